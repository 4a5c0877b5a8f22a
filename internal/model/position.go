package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is one buy that contributed to the current average cost.
type Lot struct {
	TransactionID string          `json:"transactionId"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

// Position is the holding of one instrument inside one portfolio.
// A position with zero quantity is closed but kept for reporting.
type Position struct {
	ID              string           `json:"id"`
	PortfolioID     string           `json:"portfolioId"`
	InstrumentCode  string           `json:"instrumentCode"`
	InstrumentName  string           `json:"instrumentName"`
	InstrumentClass InstrumentClass  `json:"instrumentClass"`
	Quantity        decimal.Decimal  `json:"quantity"`
	AverageCost     decimal.Decimal  `json:"averageCost"`
	MarketPrice     *decimal.Decimal `json:"marketPrice,omitempty"`
	Lots            []Lot            `json:"lots"`
	OpenedAt        time.Time        `json:"openedAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// EffectivePrice is the market price when known, else the average cost.
func (p Position) EffectivePrice() decimal.Decimal {
	if p.MarketPrice != nil {
		return *p.MarketPrice
	}
	return p.AverageCost
}

// MarketValue is quantity times the effective price, rounded to cents.
func (p Position) MarketValue() decimal.Decimal {
	if p.Quantity.Sign() <= 0 {
		return decimal.Zero
	}
	return p.Quantity.Mul(p.EffectivePrice()).Round(2)
}

// IsOpen reports whether the position still holds units.
func (p Position) IsOpen() bool {
	return p.Quantity.Sign() > 0
}

// Clone returns a copy whose lot slice and price pointer are not shared with p.
func (p Position) Clone() Position {
	c := p
	if p.Lots != nil {
		c.Lots = make([]Lot, len(p.Lots))
		copy(c.Lots, p.Lots)
	}
	if p.MarketPrice != nil {
		price := *p.MarketPrice
		c.MarketPrice = &price
	}
	return c
}
