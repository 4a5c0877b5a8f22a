package request

import (
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

func TestParseTransactionFilters(t *testing.T) {
	t.Run("empty parameters match everything", func(t *testing.T) {
		filter, err := ParseTransactionFilters("", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filter.Kind != "" || filter.InstrumentCode != "" {
			t.Errorf("Expected empty kind and code, got %q and %q", filter.Kind, filter.InstrumentCode)
		}
		if !filter.From.IsZero() || !filter.To.IsZero() {
			t.Errorf("Expected zero dates, got %v and %v", filter.From, filter.To)
		}
	})

	t.Run("kind is normalized", func(t *testing.T) {
		filter, err := ParseTransactionFilters("Interest-On-Capital", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filter.Kind != model.KindInterestOnCapital {
			t.Errorf("Expected kind %s, got %s", model.KindInterestOnCapital, filter.Kind)
		}
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		if _, err := ParseTransactionFilters("swap", "", "", ""); err == nil {
			t.Error("Expected error for unknown kind")
		}
	})

	t.Run("date-only to covers the whole day", func(t *testing.T) {
		filter, err := ParseTransactionFilters("", " PETR4 ", "2024-03-01", "2024-03-31")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		if !filter.From.Equal(wantFrom) {
			t.Errorf("Expected from %v, got %v", wantFrom, filter.From)
		}
		wantTo := time.Date(2024, 3, 31, 23, 59, 59, 999999000, time.UTC)
		if !filter.To.Equal(wantTo) {
			t.Errorf("Expected to %v, got %v", wantTo, filter.To)
		}
		if filter.InstrumentCode != "PETR4" {
			t.Errorf("Expected trimmed code PETR4, got %q", filter.InstrumentCode)
		}
	})

	t.Run("RFC3339 to is used as-is", func(t *testing.T) {
		filter, err := ParseTransactionFilters("", "", "", "2024-03-31T10:00:00Z")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		want := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
		if !filter.To.Equal(want) {
			t.Errorf("Expected to %v, got %v", want, filter.To)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		if _, err := ParseTransactionFilters("", "", "31/03/2024", ""); err == nil {
			t.Error("Expected error for invalid from")
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := ParseTransactionFilters("", "", "2024-04-01", "2024-03-01")
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}
