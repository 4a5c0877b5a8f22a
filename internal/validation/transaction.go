package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// ValidateTransaction validates a transaction create or replace request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - kind: one of the transaction kinds (buy, sell, dividend, ...)
//   - instrumentCode: non-blank
//   - quantity: must be positive
//   - unitPrice: must be positive
//   - date: YYYY-MM-DD or RFC3339
//
// Optional fields:
//   - instrumentClass: one of the instrument classes or a known alias
//   - fee, tax: must not be negative
//   - settledAt: YYYY-MM-DD or RFC3339, not before date
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateTransaction(req request.TransactionRequest) (model.TransactionDraft, error) {
	errors := make(map[string]string)
	draft := model.TransactionDraft{
		InstrumentCode: strings.TrimSpace(req.InstrumentCode),
		InstrumentName: strings.TrimSpace(req.InstrumentName),
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		Fee:            req.Fee,
		Tax:            req.Tax,
		Note:           req.Note,
	}

	if strings.TrimSpace(req.Kind) == "" {
		errors["kind"] = "kind is required"
	} else if kind, err := model.ParseTransactionKind(req.Kind); err != nil {
		errors["kind"] = err.Error()
	} else {
		draft.Kind = kind
	}

	if draft.InstrumentCode == "" {
		errors["instrumentCode"] = "instrumentCode is required"
	} else if len(draft.InstrumentCode) > 20 {
		errors["instrumentCode"] = "instrumentCode must be 20 characters or less"
	}

	if strings.TrimSpace(req.InstrumentClass) != "" {
		class, err := model.ParseInstrumentClass(req.InstrumentClass)
		if err != nil {
			errors["instrumentClass"] = err.Error()
		}
		draft.InstrumentClass = class
	}

	if !req.Quantity.IsPositive() {
		errors["quantity"] = "quantity must be positive"
	}
	if !req.UnitPrice.IsPositive() {
		errors["unitPrice"] = "unitPrice must be positive"
	}
	if isNegative(req.Fee) {
		errors["fee"] = "fee cannot be negative"
	}
	if isNegative(req.Tax) {
		errors["tax"] = "tax cannot be negative"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if at, _, err := request.ParseTime(req.Date); err != nil {
		errors["date"] = err.Error()
	} else {
		draft.TransactedAt = at
	}

	if req.SettledAt != nil {
		settled, _, err := request.ParseTime(*req.SettledAt)
		switch {
		case err != nil:
			errors["settledAt"] = err.Error()
		case !draft.TransactedAt.IsZero() && settled.Before(draft.TransactedAt):
			errors["settledAt"] = "settledAt cannot be before date"
		default:
			draft.SettledAt = &settled
		}
	}

	if err := errorOrNil(errors); err != nil {
		return model.TransactionDraft{}, err
	}
	return draft, nil
}

// ValidateSetPrice validates a manual price override.
func ValidateSetPrice(req request.SetPriceRequest) error {
	if !req.Price.IsPositive() {
		return &Error{Fields: map[string]string{"price": "price must be positive"}}
	}
	return nil
}

func isNegative(d *decimal.Decimal) bool {
	return d != nil && d.IsNegative()
}
