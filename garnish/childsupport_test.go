package garnish_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnishedge/garnish-engine/garnish"
)

// =============================================================================
// SINGLE ORDER
// =============================================================================

func TestChildSupport_SingleOrder_CurrentAndArrearCovered(t *testing.T) {
	// GIVEN: DE = 1000 and a 50% withholding limit, so ADE = 500
	// WHEN: One order asks 300 current plus 100 arrears
	// THEN: Both are paid in full
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", Type: garnish.TypeChildSupport, OrderedAmount: d(300), ArrearAmount: d(100)},
	})
	require.NoError(t, err)

	require.Len(t, res.Cases, 1)
	assert.True(t, res.Cases[0].WithholdingAmt.Equal(d(300)), "got %s", res.Cases[0].WithholdingAmt)
	assert.True(t, res.Cases[0].ArrearAmt.Equal(d(100)), "got %s", res.Cases[0].ArrearAmt)
	assert.True(t, res.AllowableDE.Equal(d(500)))
}

func TestChildSupport_SingleOrder_ADECapsCurrent(t *testing.T) {
	// GIVEN: ADE = 500
	// WHEN: The order asks 600 current
	// THEN: Withholding is capped at ADE and no arrears are paid
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(600), ArrearAmount: d(50)},
	})
	require.NoError(t, err)

	assert.True(t, res.Cases[0].WithholdingAmt.Equal(d(500)))
	assert.True(t, res.Cases[0].ArrearAmt.IsZero())
}

func TestChildSupport_SingleOrder_ArrearLimitedByRemainder(t *testing.T) {
	// GIVEN: ADE = 500 and 450 ordered
	// WHEN: Arrears of 200 are requested but only 50 of ADE remains
	// THEN: Arrears get the remainder
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(450), ArrearAmount: d(200)},
	})
	require.NoError(t, err)

	assert.True(t, res.Cases[0].WithholdingAmt.Equal(d(450)))
	assert.True(t, res.Cases[0].ArrearAmt.Equal(d(50)))
}

func TestChildSupport_ZeroGrossPay_ZeroesOutputs(t *testing.T) {
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 0, 0)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(300), ArrearAmount: d(100)},
	})
	require.NoError(t, err)

	assert.True(t, res.Cases[0].WithholdingAmt.IsZero())
	assert.True(t, res.Cases[0].ArrearAmt.IsZero())
	assert.True(t, res.AmountLeftForOtherGarn.IsZero())
}

// =============================================================================
// MULTIPLE ORDERS
// =============================================================================

func TestChildSupport_Multiple_FullCoverage_PaysEverything(t *testing.T) {
	// GIVEN: ADE = 500 covering 200+100 current and 50+50 arrears
	// THEN: Every order and arrear is paid in full
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(200), ArrearAmount: d(50)},
		{CaseID: "case-2", OrderedAmount: d(100), ArrearAmount: d(50)},
	})
	require.NoError(t, err)

	assert.True(t, res.Cases[0].WithholdingAmt.Equal(d(200)))
	assert.True(t, res.Cases[0].ArrearAmt.Equal(d(50)))
	assert.True(t, res.Cases[1].WithholdingAmt.Equal(d(100)))
	assert.True(t, res.Cases[1].ArrearAmt.Equal(d(50)))
}

func TestChildSupport_Multiple_Prorate_SplitsByOrderedShare(t *testing.T) {
	// GIVEN: Two equal 300 orders and ADE = 400 (WL 40% of DE 1000)
	// WHEN: Prorating the shortfall
	// THEN: Each order receives 200 and no arrears are paid
	rules := baseRules("california")
	supportRules(rules, "california", 1, garnish.AllocateProrate, 40)
	rec := weeklyRecord("california", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(300)},
		{CaseID: "case-2", OrderedAmount: d(300)},
	})
	require.NoError(t, err)

	assert.True(t, res.Cases[0].WithholdingAmt.Equal(d(200)), "got %s", res.Cases[0].WithholdingAmt)
	assert.True(t, res.Cases[1].WithholdingAmt.Equal(d(200)), "got %s", res.Cases[1].WithholdingAmt)
	assert.True(t, res.Cases[0].ArrearAmt.IsZero())
}

func TestChildSupport_Multiple_Prorate_NeverExceedsADE(t *testing.T) {
	// Proration conserves the pool: the summed withholding equals ADE.
	rules := baseRules("california")
	supportRules(rules, "california", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("california", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(400), ArrearAmount: d(100)},
		{CaseID: "case-2", OrderedAmount: d(200), ArrearAmount: d(100)},
	})
	require.NoError(t, err)

	total := res.TotalWithheld()
	assert.True(t, total.LessThanOrEqual(res.AllowableDE.Add(d(0.02))),
		"withheld %s exceeds ADE %s", total, res.AllowableDE)
}

func TestChildSupport_Withholding_MonotonicInOrderedAmount(t *testing.T) {
	// GIVEN: ADE = 400 and a fixed second order of 150
	// WHEN: The first order's amount rises step by step
	// THEN: The first order's own withholding never decreases
	rules := baseRules("california")
	supportRules(rules, "california", 1, garnish.AllocateProrate, 40)
	rec := weeklyRecord("california", 1100, 100)
	alloc := &garnish.ChildSupportAllocator{Rules: rules}

	prev := d(-1)
	for _, ordered := range []float64{50, 100, 200, 300, 450, 600, 900} {
		res, err := alloc.Allocate(rec, []garnish.Order{
			{CaseID: "case-1", OrderedAmount: d(ordered)},
			{CaseID: "case-2", OrderedAmount: d(150)},
		})
		require.NoError(t, err)

		got := res.Cases[0].WithholdingAmt
		assert.True(t, got.GreaterThanOrEqual(prev),
			"ordered %v withheld %s, below previous %s", ordered, got, prev)
		prev = got
	}
}

func TestChildSupport_Prorate_Idempotent(t *testing.T) {
	// Re-running the allocator with identical inputs yields identical
	// cent-rounded outputs, including an uneven three-way split.
	rules := baseRules("california")
	supportRules(rules, "california", 1, garnish.AllocateProrate, 40)
	rec := weeklyRecord("california", 1100, 100)
	orders := []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(250), ArrearAmount: d(40)},
		{CaseID: "case-2", OrderedAmount: d(175)},
		{CaseID: "case-3", OrderedAmount: d(110), ArrearAmount: d(15)},
	}
	alloc := &garnish.ChildSupportAllocator{Rules: rules}

	first, err := alloc.Allocate(rec, orders)
	require.NoError(t, err)
	second, err := alloc.Allocate(rec, orders)
	require.NoError(t, err)

	require.Len(t, second.Cases, len(first.Cases))
	for i := range first.Cases {
		assert.True(t, second.Cases[i].WithholdingAmt.Equal(first.Cases[i].WithholdingAmt),
			"case %d: %s then %s", i, first.Cases[i].WithholdingAmt, second.Cases[i].WithholdingAmt)
		assert.True(t, second.Cases[i].ArrearAmt.Equal(first.Cases[i].ArrearAmt))
	}
	assert.True(t, second.TotalWithheld().Equal(first.TotalWithheld()))
	assert.True(t, second.AmountLeftForOtherGarn.Equal(first.AmountLeftForOtherGarn))
}

func TestChildSupport_Multiple_DivideEqually(t *testing.T) {
	// GIVEN: ADE = 400 against 300+300 ordered in a divide-equally state
	// THEN: Each order receives ADE / 2
	rules := baseRules("new mexico")
	supportRules(rules, "new mexico", 1, garnish.AllocateDivideEqually, 40)
	rec := weeklyRecord("new mexico", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(300)},
		{CaseID: "case-2", OrderedAmount: d(300)},
	})
	require.NoError(t, err)

	assert.True(t, res.Cases[0].WithholdingAmt.Equal(d(200)))
	assert.True(t, res.Cases[1].WithholdingAmt.Equal(d(200)))
}

func TestChildSupport_Multiple_UnknownAllocationMethod_Errors(t *testing.T) {
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocationMethod("per capita"), 40)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	_, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(300)},
		{CaseID: "case-2", OrderedAmount: d(300)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, garnish.ErrInvalidAllocationMethod))
}

func TestChildSupport_NoOrders_IsMissingData(t *testing.T) {
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	_, err := alloc.Allocate(weeklyRecord("utah", 1100, 100), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, garnish.ErrMissingData))
}

// =============================================================================
// POOL HANDOFF
// =============================================================================

func TestChildSupport_AmountLeftForOtherGarn(t *testing.T) {
	// GIVEN: DE = 1000, pool = 250
	// WHEN: Support withholds 180
	// THEN: 70 remains for other garnishments
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(180)},
	})
	require.NoError(t, err)

	assert.True(t, res.AmountLeftForOtherGarn.Equal(d(70)), "got %s", res.AmountLeftForOtherGarn)
}

func TestChildSupport_PoolExhausted_LeavesZeroNotNegative(t *testing.T) {
	// Support may legally exceed the 25% pool; the remainder floors at zero.
	rules := baseRules("utah")
	supportRules(rules, "utah", 1, garnish.AllocateProrate, 50)
	rec := weeklyRecord("utah", 1100, 100)

	alloc := &garnish.ChildSupportAllocator{Rules: rules}
	res, err := alloc.Allocate(rec, []garnish.Order{
		{CaseID: "case-1", OrderedAmount: d(400)},
	})
	require.NoError(t, err)

	assert.True(t, res.AmountLeftForOtherGarn.IsZero())
}
