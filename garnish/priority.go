/*
priority.go - Multi-garnishment allocation against the 25% pool

PURPOSE:
  An employee can carry several garnishment types at once, but creditor
  style garnishments share a single pool of 25% of disposable earnings.
  The allocator runs each type's calculator in the state's priority
  order, draws every withholding from the shared pool, and caps the run
  at two fully calculated pool types. Tax levies are served outside the
  pool and never reduce it.

KEY CONCEPTS:
  - Pool: RoundPool(0.25 * DE), the CCPA ceiling for ordinary creditors.
  - Priority order: per-state PriorityEntry rows; unlisted types go last.
  - Starvation: a type that reaches an empty pool is reported as skipped
    rather than silently zeroed.

SEE ALSO:
  - registry.go: the per-type calculators the allocator dispatches to
  - childsupport.go: AmountLeftForOtherGarn, the pool handoff from support
*/
package garnish

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// maxCalculatedTypes caps how many pool garnishment types are fully
// calculated in one pass. Later types are reported as skipped.
const maxCalculatedTypes = 2

// servedOutsidePool marks types that are withheld against the paycheck
// directly instead of the shared 25% pool.
func servedOutsidePool(t GarnishmentType) bool {
	return t == TypeFederalTaxLevy || t == TypeStateTaxLevy
}

// PriorityAllocator runs a full multi-garnishment pass for one employee.
type PriorityAllocator struct {
	Rules    *RuleSet
	Registry *Registry
}

// NewPriorityAllocator wires an allocator with the standard registry.
func NewPriorityAllocator(rules *RuleSet) *PriorityAllocator {
	return &PriorityAllocator{Rules: rules, Registry: NewRegistry(rules)}
}

type typeGroup struct {
	gtype  GarnishmentType
	orders []Order
	seen   int
}

func groupOrders(orders []Order) []typeGroup {
	var groups []typeGroup
	index := make(map[GarnishmentType]int)
	for _, o := range orders {
		i, ok := index[o.Type]
		if !ok {
			i = len(groups)
			index[o.Type] = i
			groups = append(groups, typeGroup{gtype: o.Type, seen: len(groups)})
		}
		groups[i].orders = append(groups[i].orders, o)
	}
	return groups
}

// Allocate computes every garnishment type in the employee's order set,
// sharing the 25% pool between the pool types in state priority order.
func (a *PriorityAllocator) Allocate(rec *PayrollRecord, orders []Order) (*CaseResult, error) {
	if len(orders) == 0 {
		return nil, &MissingDataError{Field: "garnishment_data", Detail: "no orders to allocate"}
	}

	de, err := DisposableEarnings(rec, a.Rules)
	if err != nil {
		return nil, err
	}
	pool := RoundPool(de.Mul(CCPAPoolRate))

	groups := groupOrders(orders)

	// A combined spousal and medical order supersedes a plain child
	// support order for the same employee.
	hasCombined := false
	for _, g := range groups {
		if g.gtype == TypeSpousalAndMedical {
			hasCombined = true
		}
	}
	if hasCombined {
		kept := groups[:0]
		for _, g := range groups {
			if g.gtype != TypeChildSupport {
				kept = append(kept, g)
			}
		}
		groups = kept
	}

	var pooled, outside []typeGroup
	for _, g := range groups {
		if servedOutsidePool(g.gtype) {
			outside = append(outside, g)
		} else {
			pooled = append(pooled, g)
		}
	}
	sort.SliceStable(pooled, func(i, j int) bool {
		pi := a.Rules.TypePriority(rec.WorkState, pooled[i].gtype)
		pj := a.Rules.TypePriority(rec.WorkState, pooled[j].gtype)
		if pi != pj {
			return pi < pj
		}
		return pooled[i].seen < pooled[j].seen
	})

	result := &CaseResult{
		EmployeeID:         rec.EmployeeID,
		DisposableEarnings: de,
		TwentyFivePctOfDE:  pool,
	}

	available := pool
	calculated := 0
	totalWithheld := decimal.Zero

	for _, g := range pooled {
		if !available.IsPositive() || calculated >= maxCalculatedTypes {
			result.Results = append(result.Results, TypeResult{
				Type:        g.gtype,
				Status:      StatusSkippedNoFunds,
				ErrorDetail: "insufficient funds in the disposable earnings pool",
			})
			continue
		}

		tr, err := a.computeType(rec, g)
		if err != nil {
			result.Results = append(result.Results, errorResult(g.gtype, err))
			continue
		}
		if tr.Status != StatusCompleted {
			result.Results = append(result.Results, *tr)
			continue
		}

		switch g.gtype {
		case TypeChildSupport, TypeSpousalAndMedical:
			// Support tracks its own pool remainder; a zero remainder is
			// re-checked against 25% of DE less the amount withheld, since
			// support may legally exceed the pool.
			next := tr.AmountLeftForOtherGarn
			if !next.IsPositive() {
				diff := RoundCents(de.Mul(CCPAPoolRate).Sub(tr.WithholdingAmt))
				if diff.IsPositive() {
					next = diff
				} else {
					next = decimal.Zero
				}
			}
			available = next
		case TypeStudentLoan:
			total := decimal.Zero
			for i := range tr.Cases {
				take := MinAmount(tr.Cases[i].WithholdingAmt, available)
				take = FloorZero(take)
				tr.Cases[i].WithholdingAmt = RoundCents(take)
				available = FloorZero(available.Sub(take))
				total = total.Add(take)
			}
			tr.WithholdingAmt = RoundCents(total)
			tr.AmountLeftForOtherGarn = available
		default:
			tr.WithholdingAmt = RoundCents(MinAmount(tr.WithholdingAmt, available))
			available = FloorZero(available.Sub(tr.WithholdingAmt))
			tr.AmountLeftForOtherGarn = available
		}

		calculated++
		totalWithheld = totalWithheld.Add(tr.WithholdingAmt)
		result.Results = append(result.Results, *tr)
	}

	for _, g := range outside {
		tr, err := a.computeType(rec, g)
		if err != nil {
			result.Results = append(result.Results, errorResult(g.gtype, err))
			continue
		}
		result.Results = append(result.Results, *tr)
	}

	return result, nil
}

func (a *PriorityAllocator) computeType(rec *PayrollRecord, g typeGroup) (*TypeResult, error) {
	calc, err := a.Registry.Lookup(g.gtype)
	if err != nil {
		return nil, err
	}
	tr, err := calc.Compute(rec, g.orders)
	if err != nil {
		return nil, err
	}
	if fee, rule, ok := a.Rules.FeeFor(rec.WorkState, g.gtype, rec.PayPeriod, tr.WithholdingAmt); ok {
		tr.GarnishmentFee = fee
		tr.FeeRule = rule
	}
	return tr, nil
}

// errorResult folds a calculator error into a per-type result row so one
// failing type never aborts the whole employee pass.
func errorResult(t GarnishmentType, err error) TypeResult {
	tr := TypeResult{Type: t, Status: StatusCalculationError, ErrorDetail: err.Error()}
	var np *NotPermittedError
	var nf *ConfigNotFoundError
	switch {
	case errors.As(err, &np):
		tr.Status = StatusNotPermitted
	case errors.As(err, &nf):
		tr.Status = StatusNotFound
	case errors.Is(err, ErrUnknownGarnishmentType):
		tr.Status = StatusNotFound
	}
	return tr
}
