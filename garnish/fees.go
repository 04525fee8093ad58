/*
fees.go - Per-state garnishment processing fees

PURPOSE:
  Most states let the employer recover an administrative fee for
  processing a garnishment. The fee schedule is a rule table keyed by
  state, garnishment type, and pay period; each row names one of the
  numbered rules below. Some rules are a percentage of the withheld
  amount with a floor, some are flat amounts from the row itself, and
  some are statutory text with no machine-computable amount. Those
  informational rules surface a note instead of a number.

SEE ALSO:
  - rules.go: FeeRule rows and their RuleSet lookup
  - priority.go: attaches the fee to each type result
*/
package garnish

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeeOutcome is the result of applying one fee rule.
type FeeOutcome struct {
	Rule      string
	Amount    decimal.Decimal
	Note      string
	PayableBy string

	// Numeric is false for informational rules whose fee cannot be
	// computed from the withheld amount alone.
	Numeric bool
}

// percentFee returns max(floor, withheld*pct) rounded to one decimal
// place, zero when nothing was withheld.
func percentFee(withheld, pct, floor decimal.Decimal) decimal.Decimal {
	if !withheld.IsPositive() {
		return RoundPool(MaxAmount(floor, decimal.Zero))
	}
	return RoundPool(MaxAmount(floor, withheld.Mul(pct)))
}

// ==========================================================================
// RULE FORMULAS
// ==========================================================================

type feeFormula func(row FeeRule, gtype GarnishmentType, withheld decimal.Decimal) FeeOutcome

var feeFormulas = map[string]feeFormula{
	"Rule_1": func(row FeeRule, _ GarnishmentType, _ decimal.Decimal) FeeOutcome {
		return FeeOutcome{Amount: row.Amount, Numeric: true}
	},
	"Rule_2": noteRule("no provision"),
	"Rule_3": func(_ FeeRule, gtype GarnishmentType, withheld decimal.Decimal) FeeOutcome {
		// 10% of the withheld amount, but only inside the band the state
		// allows for the garnishment type.
		amt := withheld.Mul(decimal.NewFromFloat(0.10))
		fifty := decimal.NewFromInt(50)
		hundredAmt := decimal.NewFromInt(100)
		switch gtype {
		case TypeStateTaxLevy:
			if amt.LessThan(fifty) {
				return FeeOutcome{Amount: RoundPool(amt), Numeric: true}
			}
		case TypeCreditorDebt:
			if amt.GreaterThanOrEqual(fifty) && amt.LessThan(hundredAmt) {
				return FeeOutcome{Amount: RoundPool(amt), Numeric: true}
			}
		}
		return FeeOutcome{Numeric: true}
	},
	"Rule_4":  percentRule(0.02, 0),
	"Rule_5":  percentRule(0.03, 12),
	"Rule_6":  percentRule(0.02, 8),
	"Rule_7":  percentRule(0.01, 2),
	"Rule_8":  noteRule("$1 per electronic payment capped at $2/month, $2 per other payment capped at $4/month"),
	"Rule_9":  noteRule("5% of amount deducted, from creditor funds"),
	"Rule_10": noteRule("court awards cost"),
	"Rule_12": noteRule("$2 for each deduction taken after levy expiry or release"),
	"Rule_13": percentRule(0.02, 0),
	"Rule_14": percentRule(0.02, 0),
	"Rule_15": noteRule("$5 from landlord amount"),
	"Rule_16": noteRule("$5 for each garnishment served"),
	"Rule_17": noteRule("$15 paid by creditor"),
	"Rule_18": percentRule(0.05, 5),
	"Rule_19": noteRule("may deduct $5.00 for state employees"),
	"Rule_20": noteRule("$10.00/month under wage attachments"),
	"Rule_21": noteRule("$10 for single garnishment, $25 for continuing garnishment, paid by creditor"),
	"Rule_22": noteRule("$10 or $50 paid by creditor"),
	"Rule_26": percentRule(0.01, 0),
}

func percentRule(pct, floor float64) feeFormula {
	p := decimal.NewFromFloat(pct)
	f := decimal.NewFromFloat(floor)
	return func(_ FeeRule, _ GarnishmentType, withheld decimal.Decimal) FeeOutcome {
		return FeeOutcome{Amount: percentFee(withheld, p, f), Numeric: true}
	}
}

func noteRule(note string) feeFormula {
	return func(FeeRule, GarnishmentType, decimal.Decimal) FeeOutcome {
		return FeeOutcome{Note: note}
	}
}

// ==========================================================================
// ENGINE
// ==========================================================================

// FeeEngine applies the fee schedule for one rule set.
type FeeEngine struct {
	Rules *RuleSet
}

func (e *FeeEngine) findRow(state string, gtype GarnishmentType, pp PayPeriod) (FeeRule, bool) {
	st := NormalizeState(state)
	for _, row := range e.Rules.Fees {
		if NormalizeState(row.State) == st &&
			row.Type == gtype &&
			strings.EqualFold(string(row.PayPeriod), string(pp)) {
			return row, true
		}
	}
	return FeeRule{}, false
}

// Apply finds the fee rule for a state, type, and pay period and computes
// the fee on the withheld amount. A state with no matching row returns
// ok=false; the caller reports no fee.
func (e *FeeEngine) Apply(state string, gtype GarnishmentType, pp PayPeriod, withheld decimal.Decimal) (FeeOutcome, bool) {
	row, ok := e.findRow(state, gtype, pp)
	if !ok {
		return FeeOutcome{}, false
	}
	formula, ok := feeFormulas[row.Rule]
	if !ok {
		return FeeOutcome{Rule: row.Rule, Note: "rule not defined", PayableBy: row.PayableBy}, true
	}
	out := formula(row, gtype, withheld)
	out.Rule = row.Rule
	if out.PayableBy == "" {
		out.PayableBy = row.PayableBy
	}
	return out, true
}

// FeeFor is the RuleSet convenience used by the allocator: the numeric
// fee amount and rule name, or ok=false when no rule row matches.
func (rs *RuleSet) FeeFor(state string, gtype GarnishmentType, pp PayPeriod, withheld decimal.Decimal) (decimal.Decimal, string, bool) {
	eng := &FeeEngine{Rules: rs}
	out, ok := eng.Apply(state, gtype, pp, withheld)
	if !ok {
		return decimal.Zero, "", false
	}
	return out.Amount, out.Rule, true
}
