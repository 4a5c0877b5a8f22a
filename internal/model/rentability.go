package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentabilityReport is the valuation of a single position.
// Monetary fields carry 2 fractional digits, percentages 4.
type RentabilityReport struct {
	PortfolioID     string          `json:"portfolioId"`
	InstrumentCode  string          `json:"instrumentCode"`
	InstrumentName  string          `json:"instrumentName,omitempty"`
	InstrumentClass InstrumentClass `json:"instrumentClass"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageCost     decimal.Decimal `json:"averageCost"`
	MarketPrice     decimal.Decimal `json:"marketPrice"`

	TotalBought     decimal.Decimal `json:"totalBought"`
	TotalSold       decimal.Decimal `json:"totalSold"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalFees       decimal.Decimal `json:"totalFees"`
	TotalTax        decimal.Decimal `json:"totalTax"`
	InvestedCapital decimal.Decimal `json:"investedCapital"`
	MarketValue     decimal.Decimal `json:"marketValue"`
	ValueWithIncome decimal.Decimal `json:"valueWithIncome"`
	GrossReturn     decimal.Decimal `json:"grossReturn"`
	TotalCosts      decimal.Decimal `json:"totalCosts"`
	NetReturn       decimal.Decimal `json:"netReturn"`
	RealizedGain    decimal.Decimal `json:"realizedGain"`

	GrossReturnPct      decimal.Decimal `json:"grossReturnPct"`
	NetReturnPct        decimal.Decimal `json:"netReturnPct"`
	PriceChangePct      decimal.Decimal `json:"priceChangePct"`
	DividendYield       decimal.Decimal `json:"dividendYield"`
	AnnualizedReturnPct decimal.Decimal `json:"annualizedReturnPct"`

	PriceChangeValue decimal.Decimal `json:"priceChangeValue"`
	PriceCeiling     decimal.Decimal `json:"priceCeiling"`
	PriceSupport     decimal.Decimal `json:"priceSupport"`

	FirstBuyAt        *time.Time `json:"firstBuyAt,omitempty"`
	LastTransactionAt *time.Time `json:"lastTransactionAt,omitempty"`
	ComputedAt        time.Time  `json:"computedAt"`
}

// PeriodReturns splits the total net return percentage into period fractions.
type PeriodReturns struct {
	Month      decimal.Decimal `json:"month"`
	Quarter    decimal.Decimal `json:"quarter"`
	HalfYear   decimal.Decimal `json:"halfYear"`
	Year       decimal.Decimal `json:"year"`
	YearToDate decimal.Decimal `json:"yearToDate"`
}

// PortfolioRentabilityReport aggregates the reports of every position of a portfolio.
type PortfolioRentabilityReport struct {
	PortfolioID    string          `json:"portfolioId"`
	PortfolioName  string          `json:"portfolioName"`
	InitialCapital decimal.Decimal `json:"initialCapital"`

	TotalBought     decimal.Decimal `json:"totalBought"`
	TotalSold       decimal.Decimal `json:"totalSold"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalFees       decimal.Decimal `json:"totalFees"`
	TotalTax        decimal.Decimal `json:"totalTax"`
	InvestedCapital decimal.Decimal `json:"investedCapital"`
	MarketValue     decimal.Decimal `json:"marketValue"`
	ValueWithIncome decimal.Decimal `json:"valueWithIncome"`
	GrossReturn     decimal.Decimal `json:"grossReturn"`
	TotalCosts      decimal.Decimal `json:"totalCosts"`
	NetReturn       decimal.Decimal `json:"netReturn"`
	RealizedGain    decimal.Decimal `json:"realizedGain"`

	GrossReturnPct decimal.Decimal `json:"grossReturnPct"`
	NetReturnPct   decimal.Decimal `json:"netReturnPct"`
	DividendYield  decimal.Decimal `json:"dividendYield"`

	ClassDistribution map[InstrumentClass]decimal.Decimal `json:"classDistribution"`
	InstrumentCount   int                                 `json:"instrumentCount"`
	PositiveCount     int                                 `json:"positiveCount"`
	NegativeCount     int                                 `json:"negativeCount"`
	Volatility        decimal.Decimal                     `json:"volatility"`
	PeriodReturns     PeriodReturns                       `json:"periodReturns"`

	Instruments []RentabilityReport `json:"instruments"`
	RevaluedAt  *time.Time          `json:"revaluedAt,omitempty"`
	ComputedAt  time.Time           `json:"computedAt"`
}

// MonthlyTax is the estimated capital-gains tax of one calendar month.
type MonthlyTax struct {
	Month        string          `json:"month"` // YYYY-MM
	EquitySold   decimal.Decimal `json:"equitySold"`
	EquityGain   decimal.Decimal `json:"equityGain"`
	EquityExempt bool            `json:"equityExempt"`
	EquityTax    decimal.Decimal `json:"equityTax"`
	FundGain     decimal.Decimal `json:"fundGain"`
	FundTax      decimal.Decimal `json:"fundTax"`
	EstimatedTax decimal.Decimal `json:"estimatedTax"`
	SellCount    int             `json:"sellCount"`
}

// TaxEstimate is the advisory capital-gains estimate for a portfolio.
type TaxEstimate struct {
	PortfolioID string          `json:"portfolioId"`
	Total       decimal.Decimal `json:"total"`
	Months      []MonthlyTax    `json:"months"`
}

// RealReturn compares the nominal growth of a portfolio with accumulated inflation.
type RealReturn struct {
	PortfolioID          string          `json:"portfolioId"`
	From                 time.Time       `json:"from"`
	To                   time.Time       `json:"to"`
	InitialCapital       decimal.Decimal `json:"initialCapital"`
	CurrentValue         decimal.Decimal `json:"currentValue"`
	NominalReturn        decimal.Decimal `json:"nominalReturn"`
	AccumulatedInflation decimal.Decimal `json:"accumulatedInflation"`
	RealReturn           decimal.Decimal `json:"realReturn"`
	InflationAdjusted    decimal.Decimal `json:"inflationAdjustedCapital"`
}
