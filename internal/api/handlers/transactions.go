package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// ledger work to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// TransactionResult is returned by every ledger mutation: the stored transaction
// and the position it left behind.
type TransactionResult struct {
	Transaction model.Transaction `json:"transaction"`
	Position    model.Position    `json:"position"`
}

// PortfolioTransactions handles GET requests listing a portfolio's transactions, newest first.
//
// Endpoint: GET /api/portfolio/{uuid}/transactions?kind=&code=&from=&to=
// Response: 200 OK with array of model.Transaction
// Error: 400 Bad Request if a filter is invalid
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) PortfolioTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := request.ParseTransactionFilters(q.Get("kind"), q.Get("code"), q.Get("from"), q.Get("to"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	transactions, err := h.transactionService.ListTransactions(r.Context(), chi.URLParam(r, "uuid"), filter)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with model.Transaction
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionService.GetTransaction(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests recording a transaction in a portfolio.
// The transaction is folded into its position and the portfolio is revalued.
//
// Endpoint: POST /api/portfolio/{uuid}/transactions
// Request Body: TransactionRequest
// Response: 201 Created with TransactionResult
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if an exit exceeds the held quantity
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := validation.ValidateTransaction(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToApplyTransaction)
		return
	}

	transaction, position, err := h.transactionService.ApplyTransaction(r.Context(), chi.URLParam(r, "uuid"), draft)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToApplyTransaction)
		return
	}

	response.RespondJSON(w, http.StatusCreated, TransactionResult{Transaction: transaction, Position: position})
}

// UpdateTransaction handles PUT requests replacing a transaction.
// The old effect is reversed and the new one applied as one unit.
//
// Endpoint: PUT /api/transaction/{uuid}
// Request Body: TransactionRequest
// Response: 200 OK with TransactionResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if transaction not found
// Error: 409 Conflict if the replacement would leave a negative quantity
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := validation.ValidateTransaction(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateTransaction)
		return
	}

	transaction, position, err := h.transactionService.UpdateTransaction(r.Context(), chi.URLParam(r, "uuid"), draft)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, TransactionResult{Transaction: transaction, Position: position})
}

// DeleteTransaction handles DELETE requests. The transaction is reversed out of
// its position before it is removed.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if transaction not found
// Error: 409 Conflict if reversing would leave a negative quantity
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.DeleteTransaction(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeleteTransaction)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ReverseTransaction handles POST requests undoing one transaction of a portfolio.
// Unlike DeleteTransaction it is scoped to the portfolio and returns the resulting position.
//
// Endpoint: POST /api/portfolio/{uuid}/transactions/{transactionId}/reverse
// Response: 200 OK with model.Position
// Error: 404 Not Found if the transaction is not part of the portfolio
// Error: 409 Conflict if reversing would leave a negative quantity
func (h *TransactionHandler) ReverseTransaction(w http.ResponseWriter, r *http.Request) {
	position, err := h.transactionService.ReverseTransaction(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "transactionId"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeleteTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}
