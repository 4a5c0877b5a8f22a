package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
)

// RentabilityHandler serves return and tax reports.
type RentabilityHandler struct {
	rentabilityService *service.RentabilityService
}

// NewRentabilityHandler creates a new RentabilityHandler.
func NewRentabilityHandler(rentabilityService *service.RentabilityService) *RentabilityHandler {
	return &RentabilityHandler{
		rentabilityService: rentabilityService,
	}
}

// PortfolioRentability handles GET requests for the aggregate report of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/rentability
// Response: 200 OK with model.PortfolioRentabilityReport
// Error: 404 Not Found if the portfolio does not exist
func (h *RentabilityHandler) PortfolioRentability(w http.ResponseWriter, r *http.Request) {
	report, err := h.rentabilityService.PortfolioRentability(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputeRentability)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// InstrumentRentability handles GET requests for the report of one instrument.
//
// Endpoint: GET /api/portfolio/{uuid}/rentability/{code}
// Response: 200 OK with model.RentabilityReport
// Error: 404 Not Found if the portfolio never held the instrument
func (h *RentabilityHandler) InstrumentRentability(w http.ResponseWriter, r *http.Request) {
	report, err := h.rentabilityService.InstrumentRentability(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputeRentability)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Tax handles GET requests for the capital-gains tax estimate with its monthly breakdown.
//
// Endpoint: GET /api/portfolio/{uuid}/tax
// Response: 200 OK with model.TaxEstimate
// Error: 404 Not Found if the portfolio does not exist
func (h *RentabilityHandler) Tax(w http.ResponseWriter, r *http.Request) {
	estimate, err := h.rentabilityService.EstimateTax(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToEstimateTax)
		return
	}

	response.RespondJSON(w, http.StatusOK, estimate)
}

// RealReturn handles GET requests comparing the portfolio's growth with inflation.
// asOf defaults to now.
//
// Endpoint: GET /api/portfolio/{uuid}/real-return?asOf=YYYY-MM-DD
// Response: 200 OK with model.RealReturn
// Error: 400 Bad Request if asOf is invalid or before the portfolio was created
// Error: 404 Not Found if the portfolio does not exist
func (h *RentabilityHandler) RealReturn(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if param := r.URL.Query().Get("asOf"); param != "" {
		t, _, err := request.ParseTime(param)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid asOf", err.Error())
			return
		}
		asOf = t
	}

	result, err := h.rentabilityService.RealReturn(r.Context(), chi.URLParam(r, "uuid"), asOf)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputeRentability)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
