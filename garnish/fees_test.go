package garnish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnishedge/garnish-engine/garnish"
)

func feeRules(state, rule string, gtype garnish.GarnishmentType) *garnish.RuleSet {
	rules := baseRules(state)
	rules.Fees = []garnish.FeeRule{
		{State: garnish.NormalizeState(state), Type: gtype,
			PayPeriod: garnish.PayWeekly, Rule: rule, PayableBy: "employee"},
	}
	return rules
}

func TestFees_PercentRule_AboveFloor(t *testing.T) {
	// Rule_5 is 3% with a $12 floor.
	rules := feeRules("illinois", "Rule_5", garnish.TypeCreditorDebt)
	eng := &garnish.FeeEngine{Rules: rules}

	out, ok := eng.Apply("illinois", garnish.TypeCreditorDebt, garnish.PayWeekly, d(1000))
	require.True(t, ok)
	assert.True(t, out.Numeric)
	assert.True(t, out.Amount.Equal(d(30)), "got %s", out.Amount)
	assert.Equal(t, "employee", out.PayableBy)
}

func TestFees_PercentRule_FloorApplies(t *testing.T) {
	rules := feeRules("illinois", "Rule_5", garnish.TypeCreditorDebt)
	eng := &garnish.FeeEngine{Rules: rules}

	out, ok := eng.Apply("illinois", garnish.TypeCreditorDebt, garnish.PayWeekly, d(100))
	require.True(t, ok)
	assert.True(t, out.Amount.Equal(d(12)))
}

func TestFees_Rule3_BandsByGarnishmentType(t *testing.T) {
	// 10% of the withheld amount applies below $50 for levies and in the
	// 50-100 band for creditor debt.
	levy := feeRules("indiana", "Rule_3", garnish.TypeStateTaxLevy)
	eng := &garnish.FeeEngine{Rules: levy}

	out, ok := eng.Apply("indiana", garnish.TypeStateTaxLevy, garnish.PayWeekly, d(300))
	require.True(t, ok)
	assert.True(t, out.Amount.Equal(d(30)), "got %s", out.Amount)

	out, ok = eng.Apply("indiana", garnish.TypeStateTaxLevy, garnish.PayWeekly, d(800))
	require.True(t, ok)
	assert.True(t, out.Amount.IsZero(), "10%% of 800 is outside the levy band")

	creditor := feeRules("indiana", "Rule_3", garnish.TypeCreditorDebt)
	eng = &garnish.FeeEngine{Rules: creditor}
	out, ok = eng.Apply("indiana", garnish.TypeCreditorDebt, garnish.PayWeekly, d(800))
	require.True(t, ok)
	assert.True(t, out.Amount.Equal(d(80)))
}

func TestFees_InformationalRule_HasNoteOnly(t *testing.T) {
	rules := feeRules("maine", "Rule_2", garnish.TypeCreditorDebt)
	eng := &garnish.FeeEngine{Rules: rules}

	out, ok := eng.Apply("maine", garnish.TypeCreditorDebt, garnish.PayWeekly, d(500))
	require.True(t, ok)
	assert.False(t, out.Numeric)
	assert.NotEmpty(t, out.Note)
	assert.True(t, out.Amount.IsZero())
}

func TestFees_FlatAmountFromRow(t *testing.T) {
	rules := baseRules("nevada")
	rules.Fees = []garnish.FeeRule{
		{State: "nevada", Type: garnish.TypeCreditorDebt, PayPeriod: garnish.PayWeekly,
			Rule: "Rule_1", Amount: d(3), PayableBy: "employer"},
	}
	eng := &garnish.FeeEngine{Rules: rules}

	out, ok := eng.Apply("NV", garnish.TypeCreditorDebt, garnish.PayWeekly, d(500))
	require.True(t, ok)
	assert.True(t, out.Amount.Equal(d(3)))
	assert.Equal(t, "employer", out.PayableBy)
}

func TestFees_NoRow_NotApplicable(t *testing.T) {
	eng := &garnish.FeeEngine{Rules: baseRules("ohio")}

	_, ok := eng.Apply("ohio", garnish.TypeCreditorDebt, garnish.PayWeekly, d(500))
	assert.False(t, ok)
}
