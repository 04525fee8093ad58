/*
childsupport.go - Child support allocation

PURPOSE:
  Support orders take the largest share of any garnishment run. The
  allocator computes allowable disposable earnings (WL% of DE), pays
  current support first, then arrears from whatever ADE remains. With
  several competing orders the state's allocation method decides how a
  shortfall is split.

KEY FIGURES:
  TCSA  total current support ordered
  TAA   total arrears ordered
  TWA   TCSA + TAA
  WA    min(ADE, TCSA), the amount actually withheld for current support

SEE ALSO:
  - withholding.go: WL percent resolution
  - priority.go: how the result feeds the shared 25% pool
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

// ChildSupportAllocator allocates support withholdings for one employee.
type ChildSupportAllocator struct {
	Rules *RuleSet
}

// ChildSupportResult carries the per-order support split plus the figures
// the multi-garnishment allocator consumes downstream.
type ChildSupportResult struct {
	Cases []CaseAmount

	DisposableEarnings decimal.Decimal
	AllowableDE        decimal.Decimal
	WithholdingLimit   decimal.Decimal

	// AmountLeftForOtherGarn is what the 25% pool retains after support,
	// tracked by this calculator because support is served first.
	AmountLeftForOtherGarn decimal.Decimal
}

// TotalWithheld sums current support and arrears across orders.
func (r *ChildSupportResult) TotalWithheld() decimal.Decimal {
	total := decimal.Zero
	for _, c := range r.Cases {
		total = total.Add(c.WithholdingAmt).Add(c.ArrearAmt)
	}
	return total
}

// Allocate dispatches on order count.
func (a *ChildSupportAllocator) Allocate(rec *PayrollRecord, orders []Order) (*ChildSupportResult, error) {
	if len(orders) == 0 {
		return nil, &MissingDataError{Field: "garnishment_data", Detail: "no support orders"}
	}
	if len(orders) == 1 {
		return a.AllocateSingle(rec, orders[0])
	}
	return a.AllocateMultiple(rec, orders)
}

func (a *ChildSupportAllocator) prepare(rec *PayrollRecord, orderCount int) (de, wl, ade decimal.Decimal, err error) {
	de, err = DisposableEarnings(rec, a.Rules)
	if err != nil {
		return de, wl, ade, err
	}
	wl, err = ResolveWithholdingLimit(a.Rules, rec, de, orderCount)
	if err != nil {
		return de, wl, ade, err
	}
	ade = AllowableDisposableEarnings(wl, de)
	return de, wl, ade, nil
}

// AllocateSingle pays one order: current support up to ADE, then arrears
// from the remainder only when ADE fully covered the ordered amount.
func (a *ChildSupportAllocator) AllocateSingle(rec *PayrollRecord, order Order) (*ChildSupportResult, error) {
	de, wl, ade, err := a.prepare(rec, 1)
	if err != nil {
		return nil, err
	}

	withholding := MinAmount(ade, order.OrderedAmount)
	arrear := decimal.Zero
	if ade.GreaterThan(order.OrderedAmount) {
		remaining := FloorZero(ade.Sub(order.OrderedAmount))
		arrear = MinAmount(order.ArrearAmount, remaining)
	}

	// Zero gross pay zeroes every output regardless of formula result.
	if !GrossPay(rec).IsPositive() {
		withholding, arrear = decimal.Zero, decimal.Zero
	}

	res := &ChildSupportResult{
		Cases: []CaseAmount{{
			CaseID:         order.CaseID,
			WithholdingAmt: RoundCents(withholding),
			ArrearAmt:      RoundCents(arrear),
		}},
		DisposableEarnings: de,
		AllowableDE:        ade,
		WithholdingLimit:   wl,
	}
	res.AmountLeftForOtherGarn = poolRemainder(de, res.TotalWithheld())
	return res, nil
}

// AllocateMultiple splits ADE across competing orders using the state's
// allocation method when it cannot cover everything.
func (a *ChildSupportAllocator) AllocateMultiple(rec *PayrollRecord, orders []Order) (*ChildSupportResult, error) {
	de, wl, ade, err := a.prepare(rec, len(orders))
	if err != nil {
		return nil, err
	}

	tcsa := decimal.Zero
	taa := decimal.Zero
	for _, o := range orders {
		tcsa = tcsa.Add(o.OrderedAmount)
		taa = taa.Add(o.ArrearAmount)
	}
	twa := tcsa.Add(taa)
	wa := MinAmount(ade, tcsa)

	zeroPay := !GrossPay(rec).IsPositive()
	cases := make([]CaseAmount, len(orders))

	assign := func(i int, current, arrear decimal.Decimal) {
		if zeroPay {
			current, arrear = decimal.Zero, decimal.Zero
		}
		cases[i] = CaseAmount{
			CaseID:         orders[i].CaseID,
			WithholdingAmt: RoundCents(current),
			ArrearAmt:      RoundCents(arrear),
		}
	}

	switch {
	case ade.GreaterThanOrEqual(twa):
		// ADE covers everything: pay each order and arrear in full.
		for i, o := range orders {
			assign(i, o.OrderedAmount, o.ArrearAmount)
		}

	default:
		stateRule, err := StateWithholdingRule(a.Rules, rec.WorkState)
		if err != nil {
			return nil, err
		}
		switch stateRule.AllocationMethod {
		case AllocateProrate:
			arrearPool := wa.Sub(tcsa)
			for i, o := range orders {
				current := decimal.Zero
				if twa.IsPositive() {
					current = o.OrderedAmount.Div(twa).Mul(ade)
				}
				arrear := decimal.Zero
				if taa.IsPositive() && arrearPool.IsPositive() {
					arrear = o.ArrearAmount.Div(taa).Mul(arrearPool)
				}
				assign(i, current, arrear)
			}

		case AllocateDivideEqually:
			n := decimal.NewFromInt(int64(len(orders)))
			split := ade.Div(n)
			arrearPool := ade.Sub(tcsa)
			for i, o := range orders {
				arrear := decimal.Zero
				if arrearPool.IsPositive() {
					arrear = o.ArrearAmount.Div(n)
				}
				assign(i, split, arrear)
			}

		default:
			return nil, &CalculationError{
				Type:   TypeChildSupport,
				Reason: "allocation method " + string(stateRule.AllocationMethod),
				Err:    ErrInvalidAllocationMethod,
			}
		}
	}

	res := &ChildSupportResult{
		Cases:              cases,
		DisposableEarnings: de,
		AllowableDE:        ade,
		WithholdingLimit:   wl,
	}
	res.AmountLeftForOtherGarn = poolRemainder(de, res.TotalWithheld())
	return res, nil
}

// poolRemainder is what the CCPA pool retains after support withholding.
func poolRemainder(de, withheld decimal.Decimal) decimal.Decimal {
	pool := RoundPool(CCPAPoolRate.Mul(de))
	return FloorZero(RoundCents(pool.Sub(withheld)))
}
