// Package handlers adapts HTTP requests to the portfolio, ledger, quote and
// rentability services.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/validation"
)

// maxBodyBytes caps request bodies; no endpoint accepts more than a single record.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T, rejecting unknown fields and trailing data.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is empty")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if dec.More() {
		return v, fmt.Errorf("unexpected data after JSON body")
	}
	return v, nil
}

// respondServiceError maps a service error onto an HTTP status. Errors that are
// not part of the domain vocabulary are reported as 500 with the fallback message.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrPortfolioNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrPositionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPositionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrUnknownInstrument):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrUnknownInstrument.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidTransaction):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTransaction.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidDateRange):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInsufficientPosition):
		response.RespondError(w, http.StatusConflict, apperrors.ErrInsufficientPosition.Error(), err.Error())
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
