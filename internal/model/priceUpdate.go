package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRefreshResponse reports the outcome of refreshing the quotes of a portfolio.
// Success is true if at least one position was repriced, or there was nothing to reprice.
type PriceRefreshResponse struct {
	PortfolioID  string               `json:"portfolioId"`
	Success      bool                 `json:"success"`
	Updated      []UpdatedPosition    `json:"updated"`
	Errors       []UpdatedPositionErr `json:"errors"`
	TotalUpdated int                  `json:"totalUpdated"`
	TotalErrors  int                  `json:"totalErrors"`
	MarketValue  decimal.Decimal      `json:"marketValue"`
	RevaluedAt   time.Time            `json:"revaluedAt"`
}

// UpdatedPosition is a position that received a new market price.
type UpdatedPosition struct {
	PositionID     string           `json:"positionId"`
	InstrumentCode string           `json:"instrumentCode"`
	PreviousPrice  *decimal.Decimal `json:"previousPrice,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	QuotedAt       time.Time        `json:"quotedAt"`
}

// UpdatedPositionErr is a position whose quote could not be fetched.
type UpdatedPositionErr struct {
	PositionID     string `json:"positionId"`
	InstrumentCode string `json:"instrumentCode"`
	Error          string `json:"error"`
}
