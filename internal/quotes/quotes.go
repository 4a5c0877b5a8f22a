// Package quotes resolves current market prices for instrument codes.
package quotes

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known price of an instrument.
type Quote struct {
	Code      string          `json:"code"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Source returns the current quote of an instrument code.
// Implementations return apperrors.ErrQuoteNotFound for codes they do not know.
type Source interface {
	Quote(ctx context.Context, code string) (Quote, error)
}

// Invalidator is a Source that caches quotes and can forget one, e.g. after a
// manual price override.
type Invalidator interface {
	Source
	Invalidate(ctx context.Context, code string)
}
