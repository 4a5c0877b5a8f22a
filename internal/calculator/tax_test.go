package calculator_test

import (
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

func sell(class model.InstrumentClass, qty, price, costBasis string, at time.Time) model.Transaction {
	return model.Transaction{
		Kind:            model.KindSell,
		InstrumentCode:  "TEST3",
		InstrumentClass: class,
		Quantity:        d(qty),
		UnitPrice:       d(price),
		CostBasisAtSale: d(costBasis),
		TransactedAt:    at,
	}.Finalize()
}

var (
	jan = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	feb = time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC)
)

// TestEstimateTax tests the monthly capital-gains estimate.
//
// WHY: The exemption threshold is a hard boundary on monthly equity sales and
// fund gains are never exempt. Getting either side wrong silently changes the
// tax figure shown next to every report.
func TestEstimateTax(t *testing.T) {
	t.Run("equity sales just below the threshold are exempt", func(t *testing.T) {
		sells := []model.Transaction{sell(model.ClassEquity, "1", "19999.99", "10000.00", jan)}

		got := calculator.EstimateTax(sells)

		assertDecimal(t, "tax", "0", got)
	})

	t.Run("equity sales at the threshold are taxed", func(t *testing.T) {
		// same gain of 9999.99 as above
		sells := []model.Transaction{sell(model.ClassEquity, "1", "20000.00", "10000.01", jan)}

		got := calculator.EstimateTax(sells)

		assertDecimal(t, "tax", "1500.00", got)
	})

	t.Run("fund gains are always taxed", func(t *testing.T) {
		sells := []model.Transaction{sell(model.ClassRealEstateFund, "10", "150.00", "50.00", jan)}

		got := calculator.EstimateTax(sells)

		assertDecimal(t, "tax", "200.00", got)
	})

	t.Run("etf gains share the fund rate", func(t *testing.T) {
		sells := []model.Transaction{sell(model.ClassETF, "10", "20.00", "10.00", jan)}

		assertDecimal(t, "tax", "20.00", calculator.EstimateTax(sells))
	})

	t.Run("losses are dropped, not netted", func(t *testing.T) {
		sells := []model.Transaction{
			sell(model.ClassEquity, "100", "200.00", "190.00", jan), // +1000
			sell(model.ClassEquity, "100", "100.00", "105.00", jan), // -500
		}

		got := calculator.EstimateTax(sells)

		assertDecimal(t, "tax", "150.00", got)
	})

	t.Run("months are evaluated separately", func(t *testing.T) {
		sells := []model.Transaction{
			sell(model.ClassEquity, "100", "150.00", "140.00", jan),
			sell(model.ClassEquity, "100", "100.00", "95.00", feb),
		}

		got := calculator.EstimateTax(sells)

		assertDecimal(t, "tax", "0", got)
	})

	t.Run("fees reduce the gain", func(t *testing.T) {
		s := model.Transaction{
			Kind:            model.KindSell,
			InstrumentClass: model.ClassRealEstateFund,
			Quantity:        d("10"),
			UnitPrice:       d("110.00"),
			Fee:             d("100.00"),
			CostBasisAtSale: d("100.00"),
			TransactedAt:    jan,
		}.Finalize()

		assertDecimal(t, "tax", "0", calculator.EstimateTax([]model.Transaction{s}))
	})

	t.Run("costs equal to the gross leave no gain", func(t *testing.T) {
		s := model.Transaction{
			Kind:            model.KindSell,
			InstrumentClass: model.ClassRealEstateFund,
			Quantity:        d("10"),
			UnitPrice:       d("10.00"),
			Fee:             d("60.00"),
			Tax:             d("40.00"),
			CostBasisAtSale: d("5.00"),
			TransactedAt:    jan,
		}.Finalize()

		assertDecimal(t, "gain", "-50", calculator.SaleGain(s))
		assertDecimal(t, "tax", "0", calculator.EstimateTax([]model.Transaction{s}))
	})

	t.Run("unfinalized sale nets its own costs", func(t *testing.T) {
		s := model.Transaction{
			Kind:            model.KindSell,
			InstrumentClass: model.ClassRealEstateFund,
			Quantity:        d("10"),
			UnitPrice:       d("150.00"),
			Fee:             d("100.00"),
			CostBasisAtSale: d("50.00"),
			TransactedAt:    jan,
		}

		// 1500 - 100 - 500
		assertDecimal(t, "gain", "900", calculator.SaleGain(s))
	})

	t.Run("non-sell transactions are ignored", func(t *testing.T) {
		buy := sell(model.ClassRealEstateFund, "10", "150.00", "50.00", jan)
		buy.Kind = model.KindBuy

		assertDecimal(t, "tax", "0", calculator.EstimateTax([]model.Transaction{buy}))
	})

	t.Run("empty history", func(t *testing.T) {
		assertDecimal(t, "tax", "0", calculator.EstimateTax(nil))
	})
}

func TestMonthlyTax(t *testing.T) {
	sells := []model.Transaction{
		sell(model.ClassRealEstateFund, "10", "20.00", "10.00", feb),
		sell(model.ClassEquity, "1000", "25.00", "20.00", jan),
	}

	months := calculator.MonthlyTax(sells)

	if len(months) != 2 {
		t.Fatalf("Expected 2 months, got %d", len(months))
	}
	if months[0].Month != "2024-01" || months[1].Month != "2024-02" {
		t.Errorf("Expected months in order 2024-01, 2024-02, got %s, %s", months[0].Month, months[1].Month)
	}
	if months[0].EquityExempt {
		t.Error("Expected January equity sales of 25000.00 to be taxable")
	}
	assertDecimal(t, "january equity sold", "25000.00", months[0].EquitySold)
	assertDecimal(t, "january tax", "750.00", months[0].EstimatedTax)
	assertDecimal(t, "february tax", "20.00", months[1].EstimatedTax)
	if months[1].SellCount != 1 {
		t.Errorf("Expected 1 sell in february, got %d", months[1].SellCount)
	}
}
