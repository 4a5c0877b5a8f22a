package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// ParseTransactionFilters extracts and validates transaction list filters from query parameters.
// All parameters are optional.
//
// Validation rules:
//   - kind: Must be a known transaction kind
//   - from/to: Must be valid date/datetime strings (YYYY-MM-DD or RFC3339)
//   - from must not be after to
//
// A date-only "to" covers the whole day.
func ParseTransactionFilters(kindParam, codeParam, fromParam, toParam string) (model.TransactionFilter, error) {
	filter := model.TransactionFilter{
		InstrumentCode: strings.TrimSpace(codeParam),
	}

	if kindParam != "" {
		kind, err := model.ParseTransactionKind(kindParam)
		if err != nil {
			return model.TransactionFilter{}, err
		}
		filter.Kind = kind
	}

	if fromParam != "" {
		from, _, err := ParseTime(fromParam)
		if err != nil {
			return model.TransactionFilter{}, fmt.Errorf("invalid from: %w", err)
		}
		filter.From = from
	}

	if toParam != "" {
		to, dateOnly, err := ParseTime(toParam)
		if err != nil {
			return model.TransactionFilter{}, fmt.Errorf("invalid to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Microsecond)
		}
		filter.To = to
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return model.TransactionFilter{}, fmt.Errorf("%w: from is after to", apperrors.ErrInvalidDateRange)
	}

	return filter, nil
}

// ParseTime parses YYYY-MM-DD, RFC3339, and RFC3339 with milliseconds.
// dateOnly reports whether str carried no time of day. Results are in UTC.
func ParseTime(str string) (t time.Time, dateOnly bool, err error) {
	str = strings.TrimSpace(str)
	if t, err := time.Parse(time.DateOnly, str); err == nil {
		return t.UTC(), true, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
