package model_test

import (
	"testing"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// TestTransactionKindClassification tests the derived properties of every kind.
//
// WHY: Every algorithm branches on Direction and CostEffect. A kind that is
// missing from either switch would panic at runtime, so every declared kind is
// exercised here.
func TestTransactionKindClassification(t *testing.T) {
	want := map[model.TransactionKind]struct {
		direction model.Direction
		weighted  bool
		income    bool
		moves     bool
	}{
		model.KindBuy:               {model.DirectionEntry, true, false, true},
		model.KindSell:              {model.DirectionExit, false, false, true},
		model.KindDividend:          {model.DirectionEntry, false, true, false},
		model.KindInterestOnCapital: {model.DirectionEntry, false, true, false},
		model.KindIncome:            {model.DirectionEntry, false, true, false},
		model.KindAmortization:      {model.DirectionExit, false, false, true},
		model.KindBonus:             {model.DirectionEntry, false, false, true},
		model.KindSplit:             {model.DirectionEntry, false, false, true},
		model.KindReverseSplit:      {model.DirectionExit, false, false, true},
		model.KindSubscription:      {model.DirectionEntry, false, false, true},
		model.KindTransfer:          {model.DirectionNeutral, false, false, false},
		model.KindOther:             {model.DirectionNeutral, false, false, false},
	}

	if len(model.AllTransactionKinds()) != len(want) {
		t.Fatalf("Expected %d kinds, got %d", len(want), len(model.AllTransactionKinds()))
	}

	for _, kind := range model.AllTransactionKinds() {
		t.Run(string(kind), func(t *testing.T) {
			w, ok := want[kind]
			if !ok {
				t.Fatalf("kind %s has no expected classification", kind)
			}
			if got := kind.Direction(); got != w.direction {
				t.Errorf("Expected direction %s, got %s", w.direction, got)
			}
			if got := kind.CostEffect() == model.CostEffectWeighted; got != w.weighted {
				t.Errorf("Expected weighted=%v, got %v", w.weighted, got)
			}
			if got := kind.IsIncome(); got != w.income {
				t.Errorf("Expected income=%v, got %v", w.income, got)
			}
			if got := kind.ChangesQuantity(); got != w.moves {
				t.Errorf("Expected changesQuantity=%v, got %v", w.moves, got)
			}
		})
	}
}

func TestParseTransactionKind(t *testing.T) {
	t.Run("accepts case and dash variants", func(t *testing.T) {
		got, err := model.ParseTransactionKind(" Interest-On-Capital ")
		if err != nil {
			t.Fatalf("ParseTransactionKind() returned unexpected error: %v", err)
		}
		if got != model.KindInterestOnCapital {
			t.Errorf("Expected %s, got %s", model.KindInterestOnCapital, got)
		}
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		if _, err := model.ParseTransactionKind("gift"); err == nil {
			t.Error("Expected an error for an unknown kind")
		}
	})
}

func TestParseInstrumentClass(t *testing.T) {
	for in, want := range map[string]model.InstrumentClass{
		"stock": model.ClassEquity,
		"FII":   model.ClassRealEstateFund,
		"etf":   model.ClassETF,
		"cdb":   model.ClassFixedIncome,
	} {
		got, err := model.ParseInstrumentClass(in)
		if err != nil || got != want {
			t.Errorf("ParseInstrumentClass(%q) = %q, %v; expected %q", in, got, err, want)
		}
	}

	if model.ClassCrypto.TaxRule() != model.TaxRuleExempt {
		t.Error("Expected crypto to fall outside the estimated tax buckets")
	}
}
