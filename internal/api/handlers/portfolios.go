package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolios handles GET requests listing every portfolio, ordered by name.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of model.Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetAllPortfolios(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePortfolios.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// GetPortfolio handles GET requests for a single portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with model.Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// CreatePortfolio handles POST requests to create an empty portfolio.
//
// Endpoint: POST /api/portfolio
// Request Body: PortfolioRequest (name, description, objective, riskProfile, initialCapital)
// Response: 201 Created with model.Portfolio
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := validation.ValidatePortfolio(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreatePortfolio)
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), draft)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreatePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// UpdatePortfolio handles PUT requests replacing the editable fields of a portfolio.
// The market value is not editable; it follows the positions.
//
// Endpoint: PUT /api/portfolio/{uuid}
// Request Body: PortfolioRequest
// Response: 200 OK with model.Portfolio
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := validation.ValidatePortfolio(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdatePortfolio)
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(r.Context(), chi.URLParam(r, "uuid"), draft)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdatePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio handles DELETE requests. Positions and transactions go with it.
//
// Endpoint: DELETE /api/portfolio/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolio(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeletePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Positions handles GET requests listing a portfolio's positions, closed ones included.
//
// Endpoint: GET /api/portfolio/{uuid}/positions
// Response: 200 OK with array of model.Position
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolioService.ListPositions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePositions)
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// Revalue handles POST requests recomputing the market value from stored prices.
//
// Endpoint: POST /api/portfolio/{uuid}/revalue
// Response: 200 OK with model.Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Revalue(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.Revalue(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}
