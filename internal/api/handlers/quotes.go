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

// QuoteHandler handles market price updates.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// RefreshPrices handles POST requests fetching current quotes for every open position.
// Lookups that fail are listed in the response; the rest are still stored.
//
// Endpoint: POST /api/portfolio/{uuid}/refresh-prices
// Response: 200 OK with model.PriceRefreshResponse
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if the prices could not be stored
func (h *QuoteHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.quoteService.RefreshPortfolio(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshPrices)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// SetPrice handles PUT requests overriding the market price of one position.
//
// Endpoint: PUT /api/portfolio/{uuid}/positions/{code}/price
// Request Body: SetPriceRequest
// Response: 200 OK with model.Position
// Error: 400 Bad Request if the price is not positive
// Error: 404 Not Found if the portfolio never held the instrument
func (h *QuoteHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetPriceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetPrice(req); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSetPrice)
		return
	}

	position, err := h.quoteService.SetPrice(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "code"), req.Price)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSetPrice)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}
