package request

import "github.com/shopspring/decimal"

// TransactionRequest is the body of a transaction create or replace.
// Fee and Tax are optional; an omitted fee is computed by the server.
type TransactionRequest struct {
	Kind            string           `json:"kind"`
	InstrumentCode  string           `json:"instrumentCode"`
	InstrumentName  string           `json:"instrumentName"`
	InstrumentClass string           `json:"instrumentClass"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	Fee             *decimal.Decimal `json:"fee,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	Date            string           `json:"date"`
	SettledAt       *string          `json:"settledAt,omitempty"`
	Note            string           `json:"note"`
}

// SetPriceRequest overrides the market price of a position.
type SetPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}
