package model

import (
	"fmt"
	"strings"
)

// TransactionKind is the closed set of events that can be recorded against a position.
type TransactionKind string

const (
	KindBuy               TransactionKind = "buy"
	KindSell              TransactionKind = "sell"
	KindDividend          TransactionKind = "dividend"
	KindInterestOnCapital TransactionKind = "interest_on_capital"
	KindIncome            TransactionKind = "income"
	KindAmortization      TransactionKind = "amortization"
	KindBonus             TransactionKind = "bonus"
	KindSplit             TransactionKind = "split"
	KindReverseSplit      TransactionKind = "reverse_split"
	KindSubscription      TransactionKind = "subscription"
	KindTransfer          TransactionKind = "transfer"
	KindOther             TransactionKind = "other"
)

// Direction describes how a kind moves the quantity of a position.
type Direction int

const (
	DirectionNeutral Direction = iota
	DirectionEntry
	DirectionExit
)

func (d Direction) String() string {
	switch d {
	case DirectionEntry:
		return "entry"
	case DirectionExit:
		return "exit"
	default:
		return "neutral"
	}
}

// CostEffect describes whether a kind participates in the weighted-average cost.
type CostEffect int

const (
	CostEffectNone CostEffect = iota
	CostEffectWeighted
)

// AllTransactionKinds returns every kind in declaration order.
func AllTransactionKinds() []TransactionKind {
	return []TransactionKind{
		KindBuy, KindSell, KindDividend, KindInterestOnCapital, KindIncome,
		KindAmortization, KindBonus, KindSplit, KindReverseSplit,
		KindSubscription, KindTransfer, KindOther,
	}
}

// ParseTransactionKind converts user input into a TransactionKind.
// Matching is case-insensitive and accepts '-' in place of '_'.
func ParseTransactionKind(s string) (TransactionKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	k := TransactionKind(normalized)
	if !k.Valid() {
		return "", fmt.Errorf("unknown transaction kind: %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the declared kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindBuy, KindSell, KindDividend, KindInterestOnCapital, KindIncome,
		KindAmortization, KindBonus, KindSplit, KindReverseSplit,
		KindSubscription, KindTransfer, KindOther:
		return true
	}
	return false
}

// Direction classifies the kind as entry, exit or neutral.
// Income kinds are entries that never move quantity, see ChangesQuantity.
func (k TransactionKind) Direction() Direction {
	switch k {
	case KindBuy, KindDividend, KindInterestOnCapital, KindIncome,
		KindBonus, KindSplit, KindSubscription:
		return DirectionEntry
	case KindSell, KindAmortization, KindReverseSplit:
		return DirectionExit
	case KindTransfer, KindOther:
		return DirectionNeutral
	default:
		panic(fmt.Sprintf("model: unclassified transaction kind %q", string(k)))
	}
}

// CostEffect reports whether the kind updates the weighted-average cost. Only buys do.
func (k TransactionKind) CostEffect() CostEffect {
	switch k {
	case KindBuy:
		return CostEffectWeighted
	case KindSell, KindDividend, KindInterestOnCapital, KindIncome,
		KindAmortization, KindBonus, KindSplit, KindReverseSplit,
		KindSubscription, KindTransfer, KindOther:
		return CostEffectNone
	default:
		panic(fmt.Sprintf("model: unclassified transaction kind %q", string(k)))
	}
}

// IsIncome reports whether the kind is a cash distribution routed to the income accumulator.
func (k TransactionKind) IsIncome() bool {
	switch k {
	case KindDividend, KindInterestOnCapital, KindIncome:
		return true
	}
	return false
}

// ChangesQuantity reports whether applying the kind moves the position quantity.
func (k TransactionKind) ChangesQuantity() bool {
	switch k.Direction() {
	case DirectionEntry:
		return !k.IsIncome()
	case DirectionExit:
		return true
	default:
		return false
	}
}
