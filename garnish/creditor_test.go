package garnish_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnishedge/garnish-engine/garnish"
)

func creditorRules(state string, row garnish.ConfigRow) *garnish.RuleSet {
	rules := baseRules(state)
	row.State = garnish.NormalizeState(state)
	row.PayPeriod = garnish.PayWeekly
	rules.Thresholds[garnish.TypeCreditorDebt] = []garnish.ConfigRow{row}
	return rules
}

func TestCreditorDebt_ProhibitedState(t *testing.T) {
	rules := baseRules("texas")
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	_, err := calc.Compute(weeklyRecord("TX", 1100, 100), nil)
	require.Error(t, err)
	assert.True(t, garnish.IsNotPermitted(err))
}

func TestCreditorDebt_GeneralFormula_BetweenThresholds(t *testing.T) {
	// GIVEN: DE = 1000 between lower 300 and upper 1200
	// THEN: Withholding is DE - lower
	rules := creditorRules("utah", garnish.ConfigRow{
		LowerThresholdAmount: d(300), UpperThresholdAmount: d(1200), UpperThresholdPercent: d(25),
	})
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	res, err := calc.Compute(weeklyRecord("utah", 1100, 100), nil)
	require.NoError(t, err)
	assert.True(t, res.WithholdingAmt.Equal(d(700)), "got %s", res.WithholdingAmt)
}

func TestCreditorDebt_GeneralFormula_AboveUpperThreshold(t *testing.T) {
	rules := creditorRules("utah", garnish.ConfigRow{
		LowerThresholdAmount: d(300), UpperThresholdAmount: d(800), UpperThresholdPercent: d(25),
	})
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	res, err := calc.Compute(weeklyRecord("utah", 1100, 100), nil)
	require.NoError(t, err)
	assert.True(t, res.WithholdingAmt.Equal(d(250)))
}

func TestCreditorDebt_Arizona_DateGate(t *testing.T) {
	// Orders filed before December 5 2024 use the general formula; orders
	// on or after use the minimum-wage compare.
	rules := creditorRules("arizona", garnish.ConfigRow{
		LowerThresholdAmount: d(217.50), UpperThresholdAmount: d(290),
		UpperThresholdPercent: d(25), LowerThresholdPercent1: d(10),
	})
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	before := weeklyRecord("arizona", 1100, 100)
	before.GarnishmentStartDate = time.Date(2024, time.December, 4, 0, 0, 0, 0, time.UTC)
	res, err := calc.Compute(before, nil)
	require.NoError(t, err)
	assert.True(t, res.WithholdingAmt.Equal(d(250)), "general formula, got %s", res.WithholdingAmt)

	after := weeklyRecord("arizona", 1100, 100)
	after.GarnishmentStartDate = time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)
	res, err = calc.Compute(after, nil)
	require.NoError(t, err)
	// min(DE - 217.50, 10% of DE) = min(782.50, 100)
	assert.True(t, res.WithholdingAmt.Equal(d(100)), "minimum-wage compare, got %s", res.WithholdingAmt)
}

func TestCreditorDebt_Delaware_PercentLimit(t *testing.T) {
	rules := creditorRules("delaware", garnish.ConfigRow{PercentLimit: d(15)})
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	res, err := calc.Compute(weeklyRecord("delaware", 1100, 100), nil)
	require.NoError(t, err)
	assert.True(t, res.WithholdingAmt.Equal(d(150)))
}

func TestCreditorDebt_Tennessee_DependentChildExemption(t *testing.T) {
	// The general result is reduced by the per-child exempt amount.
	rules := creditorRules("tennessee", garnish.ConfigRow{
		LowerThresholdAmount: d(300), UpperThresholdAmount: d(800),
		UpperThresholdPercent: d(25), ExemptAmount: d(2.50),
	})
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	rec := weeklyRecord("tennessee", 1100, 100)
	rec.NoOfDependentChild = 2
	res, err := calc.Compute(rec, nil)
	require.NoError(t, err)
	assert.True(t, res.WithholdingAmt.Equal(d(245)), "got %s", res.WithholdingAmt)
}

func TestCreditorDebt_ZeroGrossPay_InsufficientPay(t *testing.T) {
	rules := creditorRules("utah", garnish.ConfigRow{
		LowerThresholdAmount: d(300), UpperThresholdAmount: d(800), UpperThresholdPercent: d(25),
	})
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	res, err := calc.Compute(weeklyRecord("utah", 0, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, garnish.StatusInsufficientPay, res.Status)
	assert.True(t, res.WithholdingAmt.IsZero())
}

func TestCreditorDebt_MissingConfigRow_IsNotFound(t *testing.T) {
	rules := baseRules("utah")
	calc := &garnish.CreditorDebtCalculator{Rules: rules}

	_, err := calc.Compute(weeklyRecord("utah", 1100, 100), nil)
	require.Error(t, err)
	assert.True(t, garnish.IsNotFound(err))
}
