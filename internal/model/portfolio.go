package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio owns positions and their transactions.
// MarketValue is recomputed after every mutation and every price refresh.
type Portfolio struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Objective      string          `json:"objective,omitempty"`
	RiskProfile    string          `json:"riskProfile,omitempty"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	MarketValue    decimal.Decimal `json:"marketValue"`
	RevaluedAt     *time.Time      `json:"revaluedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// IsStale reports whether the portfolio has not been revalued within maxAge of now.
func (p Portfolio) IsStale(now time.Time, maxAge time.Duration) bool {
	if p.RevaluedAt == nil {
		return true
	}
	return now.Sub(*p.RevaluedAt) > maxAge
}

// PortfolioDraft holds user-editable portfolio fields.
type PortfolioDraft struct {
	Name           string
	Description    string
	Objective      string
	RiskProfile    string
	InitialCapital decimal.Decimal
}
