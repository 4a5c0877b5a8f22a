package model

import (
	"fmt"
	"strings"
)

// InstrumentClass groups instruments for tax treatment and distribution reporting.
type InstrumentClass string

const (
	ClassEquity         InstrumentClass = "equity"
	ClassRealEstateFund InstrumentClass = "real_estate_fund"
	ClassETF            InstrumentClass = "etf"
	ClassBDR            InstrumentClass = "bdr"
	ClassREIT           InstrumentClass = "reit"
	ClassFixedIncome    InstrumentClass = "fixed_income"
	ClassCrypto         InstrumentClass = "crypto"
	ClassOther          InstrumentClass = "other"
)

// TaxRule is the bucket a class falls into for the monthly capital-gains estimate.
type TaxRule int

const (
	TaxRuleExempt TaxRule = iota
	TaxRuleEquity
	TaxRuleFund
)

// AllInstrumentClasses returns every class in declaration order.
func AllInstrumentClasses() []InstrumentClass {
	return []InstrumentClass{
		ClassEquity, ClassRealEstateFund, ClassETF, ClassBDR,
		ClassREIT, ClassFixedIncome, ClassCrypto, ClassOther,
	}
}

// ParseInstrumentClass converts user input into an InstrumentClass.
// A few common aliases are accepted (stock, fii, cdb, ...).
func ParseInstrumentClass(s string) (InstrumentClass, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch normalized {
	case "equity", "stock", "acao":
		return ClassEquity, nil
	case "real_estate_fund", "fii", "fund":
		return ClassRealEstateFund, nil
	case "etf":
		return ClassETF, nil
	case "bdr":
		return ClassBDR, nil
	case "reit":
		return ClassREIT, nil
	case "fixed_income", "cdb", "lci", "lca", "debenture", "treasury":
		return ClassFixedIncome, nil
	case "crypto":
		return ClassCrypto, nil
	case "other":
		return ClassOther, nil
	}
	return "", fmt.Errorf("unknown instrument class: %q", s)
}

// TaxRule returns the capital-gains bucket for the class.
func (c InstrumentClass) TaxRule() TaxRule {
	switch c {
	case ClassEquity:
		return TaxRuleEquity
	case ClassRealEstateFund, ClassETF:
		return TaxRuleFund
	default:
		return TaxRuleExempt
	}
}
