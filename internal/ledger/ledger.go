// Package ledger folds transactions into positions.
//
// Positions are values: Apply and Reverse return a new Position and leave their
// argument untouched, also when they fail.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

const (
	quantityPlaces int32 = 4
	pricePlaces    int32 = 2
	costPlaces     int32 = 4
)

// NewPosition seeds an empty position for an instrument the portfolio has not held before.
func NewPosition(id, portfolioID string, t model.TransactionDraft, now time.Time) model.Position {
	return model.Position{
		ID:              id,
		PortfolioID:     portfolioID,
		InstrumentCode:  NormalizeCode(t.InstrumentCode),
		InstrumentName:  t.InstrumentName,
		InstrumentClass: t.InstrumentClass,
		Quantity:        decimal.Zero,
		AverageCost:     decimal.Zero,
		Lots:            []model.Lot{},
		OpenedAt:        now,
		UpdatedAt:       now,
	}
}

// NormalizeCode upper-cases and trims an instrument code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Apply folds t into p.
//
// Buys add quantity and move the average cost, weighted by the quantity held
// before the buy. Other quantity entries (bonus, split, subscription) add
// quantity only, so they dilute the cost carried into later buys. Income kinds
// and neutral kinds change nothing but the update timestamp. Exits remove
// quantity and fail with ErrInsufficientPosition rather than going negative.
func Apply(p model.Position, t model.Transaction, now time.Time) (model.Position, error) {
	if err := validate(p, t); err != nil {
		return p, err
	}
	qty := t.Quantity.Round(quantityPlaces)
	next := p.Clone()

	switch {
	case !t.Kind.ChangesQuantity():
	case t.Kind.Direction() == model.DirectionExit:
		remaining := p.Quantity.Sub(qty)
		if remaining.IsNegative() {
			return p, fmt.Errorf("%w: %s holds %s, cannot remove %s",
				apperrors.ErrInsufficientPosition, p.InstrumentCode, p.Quantity.String(), qty.String())
		}
		next.Quantity = remaining
	default:
		next.Quantity = p.Quantity.Add(qty)
		if t.Kind.CostEffect() != model.CostEffectWeighted {
			break
		}
		lot := model.Lot{TransactionID: t.ID, Quantity: qty, UnitPrice: t.UnitPrice.Round(pricePlaces)}
		if !p.Quantity.IsPositive() {
			next.Lots = []model.Lot{lot}
			next.AverageCost = lot.UnitPrice
			break
		}
		next.AverageCost = p.Quantity.Mul(p.AverageCost).Add(qty.Mul(lot.UnitPrice)).DivRound(next.Quantity, costPlaces)
		next.Lots = append(next.Lots, lot)
	}

	next.UpdatedAt = now
	return next, nil
}

// Reverse undoes the quantity effect of a transaction previously applied to p.
//
// For a reversed buy the lot is dropped. In ReverseModeLegacy the average cost is
// left as it was. In ReverseModeReplay the buy is backed out of the average,
// which restores the previous cost exactly only when t was the last transaction
// folded into p; for anything earlier callers refold the remaining history
// with Replay instead.
func Reverse(p model.Position, t model.Transaction, mode ReverseMode, now time.Time) (model.Position, error) {
	if err := validate(p, t); err != nil {
		return p, err
	}
	qty := t.Quantity.Round(quantityPlaces)
	next := p.Clone()

	switch {
	case !t.Kind.ChangesQuantity():
	case t.Kind.Direction() == model.DirectionExit:
		next.Quantity = p.Quantity.Add(qty)
	default:
		remaining := p.Quantity.Sub(qty)
		if remaining.IsNegative() {
			return p, fmt.Errorf("%w: reversing %s on %s would leave %s",
				apperrors.ErrInsufficientPosition, t.Kind, p.InstrumentCode, remaining.String())
		}
		next.Quantity = remaining
		if t.Kind.CostEffect() != model.CostEffectWeighted {
			break
		}
		next.Lots = removeLot(next.Lots, t.ID)
		if mode != ReverseModeLegacy {
			next.AverageCost = unfold(p.AverageCost, p.Quantity, qty, t.UnitPrice.Round(pricePlaces))
		}
	}

	next.UpdatedAt = now
	return next, nil
}

// Replay folds history onto seed in transaction-time order, ties broken by
// creation time, and returns the ordered history with CostBasisAtSale stamped
// on every sell from the average cost in force when it was applied.
func Replay(seed model.Position, history []model.Transaction, now time.Time) (model.Position, []model.Transaction, error) {
	ordered := make([]model.Transaction, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].TransactedAt.Equal(ordered[j].TransactedAt) {
			return ordered[i].TransactedAt.Before(ordered[j].TransactedAt)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	p := seed
	for i, t := range ordered {
		if t.Kind == model.KindSell {
			ordered[i].CostBasisAtSale = p.AverageCost
		}
		var err error
		if p, err = Apply(p, ordered[i], now); err != nil {
			return seed, nil, fmt.Errorf("rebuild %s at transaction %s: %w", seed.InstrumentCode, t.ID, err)
		}
	}
	return p, ordered, nil
}

// Reset returns p emptied of quantity, cost and lots, keeping its identity and quote.
func Reset(p model.Position) model.Position {
	next := p.Clone()
	next.Quantity = decimal.Zero
	next.AverageCost = decimal.Zero
	next.Lots = []model.Lot{}
	return next
}

// unfold backs a buy of qty at price out of cost carried by held units.
// Nothing left means no cost; a result that is not positive keeps cost.
func unfold(cost, held, qty, price decimal.Decimal) decimal.Decimal {
	remaining := held.Sub(qty)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	prev := held.Mul(cost).Sub(qty.Mul(price)).DivRound(remaining, costPlaces)
	if !prev.IsPositive() {
		return cost
	}
	return prev
}

func removeLot(lots []model.Lot, transactionID string) []model.Lot {
	out := make([]model.Lot, 0, len(lots))
	removed := false
	for _, lot := range lots {
		if !removed && lot.TransactionID == transactionID {
			removed = true
			continue
		}
		out = append(out, lot)
	}
	return out
}

func validate(p model.Position, t model.Transaction) error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidTransaction, t.Kind)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", apperrors.ErrInvalidTransaction, t.Quantity.String())
	}
	if !t.UnitPrice.IsPositive() {
		return fmt.Errorf("%w: unit price must be positive, got %s", apperrors.ErrInvalidTransaction, t.UnitPrice.String())
	}
	if t.InstrumentCode != "" && NormalizeCode(t.InstrumentCode) != p.InstrumentCode {
		return fmt.Errorf("%w: transaction for %s applied to position %s",
			apperrors.ErrInvalidTransaction, t.InstrumentCode, p.InstrumentCode)
	}
	return nil
}
