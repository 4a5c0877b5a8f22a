package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry recorded against one position of one portfolio.
// Quantity carries 4 fractional digits, monetary fields 2.
type Transaction struct {
	ID              string          `json:"id"`
	PortfolioID     string          `json:"portfolioId"`
	PositionID      string          `json:"positionId"`
	Kind            TransactionKind `json:"kind"`
	InstrumentCode  string          `json:"instrumentCode"`
	InstrumentClass InstrumentClass `json:"instrumentClass"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	GrossValue      decimal.Decimal `json:"grossValue"`
	Fee             decimal.Decimal `json:"fee"`
	Tax             decimal.Decimal `json:"tax"`
	NetValue        decimal.Decimal `json:"netValue"`
	// CostBasisAtSale is the average cost of the position when a sell was applied.
	// Zero for every other kind.
	CostBasisAtSale decimal.Decimal `json:"costBasisAtSale"`
	TransactedAt    time.Time       `json:"transactedAt"`
	SettledAt       *time.Time      `json:"settledAt,omitempty"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TransactionDraft holds the caller-supplied fields of a transaction before it is recorded.
// Fee and Tax are optional; an absent fee is filled in from the fee schedule.
type TransactionDraft struct {
	Kind            TransactionKind
	InstrumentCode  string
	InstrumentName  string
	InstrumentClass InstrumentClass
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Fee             *decimal.Decimal
	Tax             *decimal.Decimal
	TransactedAt    time.Time
	SettledAt       *time.Time
	Note            string
}

// Finalize rounds the inputs and derives gross and net values.
// Net value is always gross minus fee and tax, whatever the direction.
func (t Transaction) Finalize() Transaction {
	t.Quantity = t.Quantity.Round(4)
	t.UnitPrice = t.UnitPrice.Round(2)
	t.Fee = t.Fee.Round(2)
	t.Tax = t.Tax.Round(2)
	t.GrossValue = t.Quantity.Mul(t.UnitPrice).Round(2)
	t.NetValue = t.GrossValue.Sub(t.Fee).Sub(t.Tax)
	return t
}

// TransactionFilter narrows a transaction listing. Zero values match everything.
type TransactionFilter struct {
	Kind           TransactionKind
	InstrumentCode string
	From           time.Time
	To             time.Time
}
