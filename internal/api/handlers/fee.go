package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
)

// FeeResponse previews the fee of a trade.
type FeeResponse struct {
	Gross decimal.Decimal `json:"gross"`
	Fee   decimal.Decimal `json:"fee"`
	Net   decimal.Decimal `json:"net"`
}

// AffordableResponse is the largest order that fits a cash balance.
type AffordableResponse struct {
	Cash      decimal.Decimal `json:"cash"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  decimal.Decimal `json:"quantity"`
	Gross     decimal.Decimal `json:"gross"`
	Fee       decimal.Decimal `json:"fee"`
}

// Fee handles GET requests previewing the fee charged on a gross trade value.
//
// Endpoint: GET /api/fee?gross=1000.00
// Response: 200 OK with FeeResponse
// Error: 400 Bad Request if gross is missing or not a number
func Fee(w http.ResponseWriter, r *http.Request) {
	gross, err := decimal.NewFromString(r.URL.Query().Get("gross"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid gross", err.Error())
		return
	}
	gross = gross.Round(calculator.MoneyPlaces)
	fee := calculator.Fee(gross)

	response.RespondJSON(w, http.StatusOK, FeeResponse{
		Gross: gross,
		Fee:   fee,
		Net:   gross.Sub(fee),
	})
}

// Affordable handles GET requests for the largest quantity whose gross value
// plus fee fits in cash.
//
// Endpoint: GET /api/fee/affordable?cash=1000&price=25.50
// Response: 200 OK with AffordableResponse
// Error: 400 Bad Request if cash or price is missing or not a number
func Affordable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cash, err := decimal.NewFromString(q.Get("cash"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid cash", err.Error())
		return
	}
	price, err := decimal.NewFromString(q.Get("price"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid price", err.Error())
		return
	}

	qty := calculator.MaxAffordableQuantity(cash, price)
	gross := qty.Mul(price).Round(calculator.MoneyPlaces)

	response.RespondJSON(w, http.StatusOK, AffordableResponse{
		Cash:      cash,
		UnitPrice: price,
		Quantity:  qty,
		Gross:     gross,
		Fee:       calculator.Fee(gross),
	})
}
