package calculator_test

import (
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 10, 0, 0, 0, 0, time.UTC)
}

func TestInflationTable(t *testing.T) {
	table := calculator.DefaultInflationTable()

	t.Run("compounds monthly rates", func(t *testing.T) {
		got := table.Accumulated(month(2024, time.January), month(2024, time.February))
		assertDecimal(t, "accumulated", "0.00831722", got)
	})

	t.Run("unknown months use the fallback rate", func(t *testing.T) {
		got := table.Accumulated(month(2023, time.May), month(2023, time.May))
		assertDecimal(t, "accumulated", "0.005", got)
	})

	t.Run("reversed range is zero", func(t *testing.T) {
		got := table.Accumulated(month(2024, time.March), month(2024, time.January))
		assertDecimal(t, "accumulated", "0", got)
	})

	t.Run("inflate and deflate are inverse within a month", func(t *testing.T) {
		from, to := month(2024, time.January), month(2024, time.January)
		assertDecimal(t, "inflated", "1004.20", table.Inflate(d("1000.00"), from, to))
		assertDecimal(t, "deflated", "1000.00", table.Deflate(d("1004.20"), from, to))
	})

	t.Run("real return discounts inflation", func(t *testing.T) {
		got := table.RealReturn(d("1000.00"), d("1100.00"), month(2024, time.January), month(2024, time.January))
		assertDecimal(t, "realReturn", "0.0954", got)
	})

	t.Run("real return with no capital only reflects inflation", func(t *testing.T) {
		got := table.RealReturn(d("0"), d("100.00"), month(2023, time.May), month(2023, time.May))
		// 1 / 1.005 - 1
		assertDecimal(t, "realReturn", "-0.005", got)
	})
}

func TestAnnualized(t *testing.T) {
	assertDecimal(t, "six months", "0.12", calculator.Annualized(d("0.06"), 6))
	assertDecimal(t, "no months", "0", calculator.Annualized(d("0.06"), 0))
}
