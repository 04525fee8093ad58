package garnish_test

import (
	"github.com/shopspring/decimal"

	"github.com/garnishedge/garnish-engine/garnish"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// baseRules builds an empty rule set with deduction keys registered for the
// given work states so disposable earnings can be computed.
func baseRules(states ...string) *garnish.RuleSet {
	rs := &garnish.RuleSet{
		Thresholds:        map[garnish.GarnishmentType][]garnish.ConfigRow{},
		WithholdingRules:  map[string]garnish.WithholdingRule{},
		StateLevy:         map[string]garnish.StateLevyRow{},
		DeductionKeys:     map[string][]string{},
		SupportPriorities: map[string][]garnish.DeductionType{},
	}
	for _, s := range states {
		rs.DeductionKeys[garnish.NormalizeState(s)] = []string{
			"federal income tax", "social security tax", "medicare tax",
		}
	}
	return rs
}

// supportRules registers a state's support rule and one matching limit row
// so the withholding limit resolver returns wlPercent for a plain employee
// with no second family and no long arrears.
func supportRules(rs *garnish.RuleSet, state string, ruleNumber int, method garnish.AllocationMethod, wlPercent int64) {
	st := garnish.NormalizeState(state)
	rs.WithholdingRules[st] = garnish.WithholdingRule{
		State: st, RuleNumber: ruleNumber, AllocationMethod: method,
	}
	row := garnish.WithholdingLimitRow{
		State:            st,
		RuleNumber:       ruleNumber,
		WithholdingLimit: decimal.NewFromInt(wlPercent),
	}
	switch ruleNumber {
	case 2, 3:
		// Flat per-state limits consult neither attribute.
	case 4:
		row.SupportsSecondFamily = "no"
		row.OrderCount = garnish.OrdersSingle
	default:
		row.SupportsSecondFamily = "no"
		row.ArrearsGreater12Wk = "no"
	}
	rs.WithholdingLimits = append(rs.WithholdingLimits, row)
}

// weeklyRecord is a plain weekly employee with one deductible tax line so
// disposable earnings come out to gross - tax.
func weeklyRecord(state string, gross, tax float64) *garnish.PayrollRecord {
	return &garnish.PayrollRecord{
		EmployeeID: "emp-1",
		WorkState:  state,
		PayPeriod:  garnish.PayWeekly,
		Wages:      d(gross),
		PayrollTaxes: map[string]decimal.Decimal{
			"federal income tax": d(tax),
		},
	}
}
