package factory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnishedge/garnish-engine/factory"
	"github.com/garnishedge/garnish-engine/garnish"
)

// =============================================================================
// PARSE
// =============================================================================

func TestParseRuleSet_FullDocument(t *testing.T) {
	// GIVEN a rule set document covering every table
	doc := []byte(`{
		"thresholds": {
			"creditor_debt": [
				{
					"state": "Utah",
					"pay_period": "weekly",
					"lower_threshold_amount": 217.50,
					"upper_threshold_amount": 290.00,
					"upper_threshold_percent": 25,
					"garn_start_date": "2024-12-05"
				}
			]
		},
		"withholding_rules": [
			{"state": "California", "rule": 1, "allocation_method": "prorate"}
		],
		"withholding_limits": [
			{
				"state": "california",
				"rule": 1,
				"supports_2nd_family": "no",
				"arrears_more_than_12_weeks": "no",
				"withholding_limit": 50
			}
		],
		"priorities": [
			{"state": "california", "garnishment_type": "child_support", "priority_order": 1}
		],
		"fees": [
			{"state": "illinois", "garnishment_type": "creditor_debt",
			 "pay_period": "weekly", "rule": "Rule_5", "payable_by": "employee"}
		],
		"federal_exemptions": [
			{"year": 2025, "filing_status": "single", "pay_period": "weekly",
			 "num_exemptions": 2, "exempt_amount": 450.00}
		],
		"state_levy": [
			{"state": "illinois", "basis": "gross_pay", "percent": 0.15}
		],
		"deduction_keys": {"California": ["federal income tax", "medicare tax"]},
		"support_priorities": {"california": ["current_child_support", "current_spousal_support"]}
	}`)

	// WHEN it is parsed
	rules, err := factory.NewRuleSetFactory().ParseRuleSet(doc)
	require.NoError(t, err)

	// THEN every table is populated with normalized states
	rows := rules.Thresholds[garnish.TypeCreditorDebt]
	require.Len(t, rows, 1)
	assert.Equal(t, "utah", rows[0].State)
	assert.True(t, rows[0].LowerThresholdAmount.Equal(decimal.NewFromFloat(217.50)))
	assert.Equal(t, time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), rows[0].GarnStartDate)

	wr, ok := rules.WithholdingRules["california"]
	require.True(t, ok)
	assert.Equal(t, 1, wr.RuleNumber)
	assert.Equal(t, garnish.AllocateProrate, wr.AllocationMethod)

	require.Len(t, rules.WithholdingLimits, 1)
	assert.True(t, rules.WithholdingLimits[0].WithholdingLimit.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, 1, rules.TypePriority("california", garnish.TypeChildSupport))

	require.Len(t, rules.Fees, 1)
	assert.Equal(t, "Rule_5", rules.Fees[0].Rule)

	require.Len(t, rules.FederalExemptions, 1)
	assert.Equal(t, garnish.FilingSingle, rules.FederalExemptions[0].FilingStatus)

	levy, ok := rules.StateLevy["illinois"]
	require.True(t, ok)
	assert.Equal(t, garnish.BasisGrossPay, levy.Basis)

	assert.Equal(t, []string{"federal income tax", "medicare tax"}, rules.DeductionKeys["california"])
	assert.Equal(t,
		[]garnish.DeductionType{garnish.DeductCurrentChildSupport, garnish.DeductCurrentSpousalSupport},
		rules.SupportPriorities["california"])
}

func TestParseRuleSet_InvalidJSON(t *testing.T) {
	_, err := factory.NewRuleSetFactory().ParseRuleSet([]byte("{not json"))
	assert.Error(t, err)
}

func TestParseRuleSet_BadDate(t *testing.T) {
	doc := []byte(`{"thresholds": {"creditor_debt": [
		{"state": "utah", "pay_period": "weekly", "garn_start_date": "12/05/2024"}
	]}}`)

	_, err := factory.NewRuleSetFactory().ParseRuleSet(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "garn_start_date")
}

func TestParseRuleSet_LevyBasisDefaults(t *testing.T) {
	doc := []byte(`{"state_levy": [{"state": "missouri", "percent": 0.25}]}`)

	rules, err := factory.NewRuleSetFactory().ParseRuleSet(doc)
	require.NoError(t, err)
	assert.Equal(t, garnish.BasisDisposableEarnings, rules.StateLevy["missouri"].Basis)
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestRuleSet_JSONRoundTrip(t *testing.T) {
	f := factory.NewRuleSetFactory()

	rules := &garnish.RuleSet{
		Thresholds: map[garnish.GarnishmentType][]garnish.ConfigRow{
			garnish.TypeCreditorDebt: {{
				State:                "arizona",
				PayPeriod:            garnish.PayWeekly,
				UpperThresholdAmount: decimal.NewFromInt(290),
				GarnStartDate:        time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC),
			}},
		},
		WithholdingRules: map[string]garnish.WithholdingRule{
			"delaware": {State: "delaware", RuleNumber: 1, AllocationMethod: garnish.AllocateProrate},
		},
		StateLevy: map[string]garnish.StateLevyRow{
			"massachusetts": {State: "massachusetts", Basis: garnish.BasisDisposableEarnings, Percent: decimal.NewFromFloat(0.15)},
		},
		DeductionKeys: map[string][]string{
			"delaware": {"federal income tax"},
		},
		SupportPriorities: map[string][]garnish.DeductionType{
			"delaware": {garnish.DeductCurrentChildSupport},
		},
	}

	// WHEN converted to JSON and back
	restored, err := f.FromJSON(f.ToJSON(rules))
	require.NoError(t, err)

	// THEN the rule set survives unchanged
	rows := restored.Thresholds[garnish.TypeCreditorDebt]
	require.Len(t, rows, 1)
	assert.Equal(t, "arizona", rows[0].State)
	assert.Equal(t, time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), rows[0].GarnStartDate)
	assert.Equal(t, rules.WithholdingRules["delaware"], restored.WithholdingRules["delaware"])
	assert.True(t, restored.StateLevy["massachusetts"].Percent.Equal(decimal.NewFromFloat(0.15)))
	assert.Equal(t, rules.SupportPriorities["delaware"], restored.SupportPriorities["delaware"])
}
