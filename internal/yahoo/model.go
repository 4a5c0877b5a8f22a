package yahoo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// Price arrays hold pointers because Yahoo emits null for days without data.
type Response struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency  string `json:"currency"`
				Symbol    string `json:"symbol"`
				LongName  string `json:"longName"`
				Shortname string `json:"shortName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					Close []*float64 `json:"close"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// PriceChart is the parsed form of a Response.
type PriceChart struct {
	Currency   string
	Symbol     string
	LongName   string
	Shortname  string
	Indicators []Indicators
}

// Indicators is one trading day of a PriceChart.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	PriceHigh  float64
	PriceLow   float64
}

// Quote is the latest known price of a symbol.
type Quote struct {
	Symbol   string
	Name     string
	Currency string
	Price    decimal.Decimal
	At       time.Time
}
