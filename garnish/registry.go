/*
registry.go - Calculator interface and type registry

PURPOSE:
  Every garnishment type implements the same Calculator interface and is
  registered against its GarnishmentType tag. The priority allocator and
  the host look calculators up here instead of switching on type strings.
*/
package garnish

// Calculator computes one garnishment type's withholding for an employee
// pay period. Implementations are pure: they read the RuleSet they were
// constructed with and never mutate their inputs.
type Calculator interface {
	Type() GarnishmentType
	Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error)
}

// Registry maps garnishment types to their calculators for one RuleSet.
type Registry struct {
	calculators map[GarnishmentType]Calculator
}

// NewRegistry wires the standard calculators against a rule set.
func NewRegistry(rules *RuleSet) *Registry {
	r := &Registry{calculators: make(map[GarnishmentType]Calculator)}
	for _, c := range []Calculator{
		&ChildSupportCalculator{Rules: rules},
		&SpousalAndMedicalCalculator{Rules: rules},
		&FederalTaxLevyCalculator{Rules: rules},
		&StateTaxLevyCalculator{Rules: rules},
		&CreditorDebtCalculator{Rules: rules},
		&StudentLoanCalculator{Rules: rules},
		&BankruptcyCalculator{Rules: rules},
		&FranchiseTaxBoardCalculator{Rules: rules},
	} {
		r.Register(c)
	}
	return r
}

func (r *Registry) Register(c Calculator) { r.calculators[c.Type()] = c }

// Lookup returns the calculator for a type.
func (r *Registry) Lookup(t GarnishmentType) (Calculator, error) {
	c, ok := r.calculators[t]
	if !ok {
		return nil, ErrUnknownGarnishmentType
	}
	return c, nil
}

// ChildSupportCalculator adapts the support allocator to the Calculator
// interface so it can participate in the registry.
type ChildSupportCalculator struct {
	Rules *RuleSet
}

func (c *ChildSupportCalculator) Type() GarnishmentType { return TypeChildSupport }

func (c *ChildSupportCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	alloc := &ChildSupportAllocator{Rules: c.Rules}
	out, err := alloc.Allocate(rec, orders)
	if err != nil {
		return nil, err
	}
	return &TypeResult{
		Type:                   TypeChildSupport,
		Status:                 StatusCompleted,
		WithholdingAmt:         out.TotalWithheld(),
		Cases:                  out.Cases,
		DisposableEarnings:     out.DisposableEarnings,
		AmountLeftForOtherGarn: out.AmountLeftForOtherGarn,
		Basis:                  "withholding limit share of disposable earnings",
	}, nil
}
