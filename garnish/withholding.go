/*
withholding.go - Support withholding limit resolution

PURPOSE:
  Each state follows one of six CCPA withholding limit rules for support
  orders. The rule number decides which employee attributes participate in
  the limit lookup; attributes a rule does not consult are blanked before
  matching so the stored rows match exactly.

RULE ATTRIBUTE MAP:
  rule 1     second family + arrears flag
  rules 2,3  neither attribute (flat per-state limits)
  rule 4     order count band (Single / Multiple), no arrears flag
  rule 5     second family + arrears flag (state-specific percents)
  rule 6     weekly DE band at $145, second family + arrears flag
  Missouri pins work and issuing state in addition to its rule.

SEE ALSO:
  - childsupport.go: applies the resolved limit to allowable DE
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

var de145 = decimal.NewFromInt(145)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// StateWithholdingRule returns the support rule metadata for a work state.
func StateWithholdingRule(rules *RuleSet, workState string) (WithholdingRule, error) {
	state := NormalizeState(workState)
	rule, ok := rules.WithholdingRules[state]
	if !ok {
		return WithholdingRule{}, &ConfigNotFoundError{
			Table: "withholding rules", State: state,
		}
	}
	return rule, nil
}

// ResolveWithholdingLimit finds the WL fraction (0..1) for the employee's
// support orders. orderCount is the number of support orders in hand.
func ResolveWithholdingLimit(rules *RuleSet, rec *PayrollRecord, de decimal.Decimal, orderCount int) (decimal.Decimal, error) {
	stateRule, err := StateWithholdingRule(rules, rec.WorkState)
	if err != nil {
		return decimal.Zero, err
	}

	var (
		secondFamily = yesNo(rec.SupportSecondFamily)
		arrears      = yesNo(rec.ArrearsGreater12Wk)
		deBand       DEBand
		orderBand    OrderCountBand
	)

	switch stateRule.RuleNumber {
	case 2, 3:
		secondFamily = ""
		arrears = ""
	case 4:
		arrears = ""
		if orderCount <= 1 {
			orderBand = OrdersSingle
		} else {
			orderBand = OrdersMultiple
		}
	case 6:
		if de.LessThanOrEqual(de145) {
			deBand = DEBandLE145
		} else {
			deBand = DEBandGT145
		}
	}

	workState, issuingState := "", ""
	if NormalizeState(rec.WorkState) == "missouri" {
		workState = "missouri"
	}
	if NormalizeState(rec.IssuingState) == "missouri" {
		issuingState = "missouri"
	}

	for _, row := range rules.WithholdingLimits {
		if row.RuleNumber != stateRule.RuleNumber {
			continue
		}
		if row.SupportsSecondFamily != secondFamily {
			continue
		}
		if row.ArrearsGreater12Wk != arrears {
			continue
		}
		if row.OrderCount != orderBand {
			continue
		}
		if row.DEBand != deBand {
			continue
		}
		if row.WorkState != workState || row.IssuingState != issuingState {
			continue
		}
		return row.WithholdingLimit.Div(hundred), nil
	}

	return decimal.Zero, &ConfigNotFoundError{
		Table: "withholding limits", State: NormalizeState(rec.WorkState),
		PayPeriod: rec.PayPeriod,
		Detail:    "no row matches the employee's support attributes",
	}
}

// AllowableDisposableEarnings is the WL share of disposable earnings,
// tracked at pool precision.
func AllowableDisposableEarnings(wl, de decimal.Decimal) decimal.Decimal {
	return RoundPool(wl.Mul(de))
}
