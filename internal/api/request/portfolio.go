package request

import "github.com/shopspring/decimal"

// PortfolioRequest represents the request body for creating or replacing a portfolio.
type PortfolioRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Objective      string          `json:"objective"`
	RiskProfile    string          `json:"riskProfile"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
}
