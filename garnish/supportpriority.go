/*
supportpriority.go - Combined support deduction sequencing

PURPOSE:
  When one income withholding order carries child support, medical
  support, spousal support, arrears, and fees together, the pieces are
  deducted in a state-defined priority sequence from a single budget of
  min(ADE, total ordered). Current support always outranks arrears and
  fees; a budget exhausted mid-sequence leaves the remaining deduction
  types skipped with a reason, not silently dropped.

SEE ALSO:
  - childsupport.go: ADE and allocation method resolution
  - rules.go: per-state SupportPriorities lists
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

// DeductionType names one component of a combined support order.
type DeductionType string

const (
	DeductCurrentChildSupport   DeductionType = "current_child_support"
	DeductCurrentMedicalSupport DeductionType = "current_medical_support"
	DeductCurrentSpousalSupport DeductionType = "current_spousal_support"
	DeductChildSupportArrear    DeductionType = "child_support_arrear"
	DeductMedicalSupportArrear  DeductionType = "medical_support_arrear"
	DeductSpousalSupportArrear  DeductionType = "spousal_support_arrear"
	DeductFees                  DeductionType = "fees"
	DeductHousePayment          DeductionType = "house_payment"
	DeductInsurancePayment      DeductionType = "insurance_payment"
)

// defaultSupportPriority applies when a state carries no override list.
var defaultSupportPriority = []DeductionType{
	DeductCurrentChildSupport,
	DeductCurrentMedicalSupport,
	DeductCurrentSpousalSupport,
	DeductChildSupportArrear,
	DeductMedicalSupportArrear,
	DeductSpousalSupportArrear,
	DeductFees,
	DeductHousePayment,
	DeductInsurancePayment,
}

// Deduction is one sequenced deduction outcome.
type Deduction struct {
	Type             DeductionType
	RequestedAmount  decimal.Decimal
	DeductedAmount   decimal.Decimal
	RemainingBalance decimal.Decimal
	FullyDeducted    bool
	Skipped          bool
	Reason           string
}

// SupportPrioritySummary aggregates a processed sequence.
type SupportPrioritySummary struct {
	TotalRequested      decimal.Decimal
	TotalDeducted       decimal.Decimal
	RemainingAllowable  decimal.Decimal
	DeductionEfficiency decimal.Decimal // percent of requested satisfied
	FullySatisfied      int
}

// SupportPriorityResult is the full outcome of one combined support order.
type SupportPriorityResult struct {
	Deductions []Deduction
	Summary    SupportPrioritySummary

	DisposableEarnings decimal.Decimal
	AllowableDE        decimal.Decimal
	WithholdingBudget  decimal.Decimal
}

// SupportPriorityProcessor sequences combined support deductions.
type SupportPriorityProcessor struct {
	Rules *RuleSet
}

func (p *SupportPriorityProcessor) priorityList(state string) []DeductionType {
	if list, ok := p.Rules.SupportPriorities[NormalizeState(state)]; ok && len(list) > 0 {
		return list
	}
	return defaultSupportPriority
}

func requestedAmount(orders []Order, t DeductionType) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		switch t {
		case DeductCurrentChildSupport:
			total = total.Add(o.CurrentChildSupport)
		case DeductCurrentMedicalSupport:
			total = total.Add(o.CurrentMedicalSupport)
		case DeductCurrentSpousalSupport:
			total = total.Add(o.CurrentSpousalSupport)
		case DeductChildSupportArrear:
			total = total.Add(o.PastDueChildSupport)
		case DeductMedicalSupportArrear:
			total = total.Add(o.PastDueMedicalSupport)
		case DeductSpousalSupportArrear:
			total = total.Add(o.PastDueSpousalSupport)
		case DeductFees:
			total = total.Add(o.CourtFees)
		case DeductHousePayment:
			total = total.Add(o.HousePayment)
		case DeductInsurancePayment:
			total = total.Add(o.InsurancePayment)
		}
	}
	return total
}

// Process runs the state's deduction sequence against the withholding
// budget min(ADE, total ordered).
func (p *SupportPriorityProcessor) Process(rec *PayrollRecord, orders []Order) (*SupportPriorityResult, error) {
	if len(orders) == 0 {
		return nil, &MissingDataError{Field: "garnishment_data", Detail: "no support orders"}
	}

	de, err := DisposableEarnings(rec, p.Rules)
	if err != nil {
		return nil, err
	}
	wl, err := ResolveWithholdingLimit(p.Rules, rec, de, len(orders))
	if err != nil {
		return nil, err
	}
	ade := AllowableDisposableEarnings(wl, de)

	priorities := p.priorityList(rec.WorkState)

	totalOrdered := decimal.Zero
	for _, t := range priorities {
		totalOrdered = totalOrdered.Add(requestedAmount(orders, t))
	}
	budget := MinAmount(ade, totalOrdered)
	if !GrossPay(rec).IsPositive() {
		budget = decimal.Zero
	}

	res := &SupportPriorityResult{
		DisposableEarnings: de,
		AllowableDE:        ade,
		WithholdingBudget:  budget,
	}

	remaining := budget
	for _, t := range priorities {
		requested := requestedAmount(orders, t)
		if requested.IsZero() {
			res.Deductions = append(res.Deductions, Deduction{
				Type: t, Skipped: true, Reason: "no amount requested",
			})
			continue
		}
		if !remaining.IsPositive() {
			res.Deductions = append(res.Deductions, Deduction{
				Type: t, RequestedAmount: requested, Skipped: true,
				Reason: "insufficient withholding amount remaining",
			})
			continue
		}
		deducted := MinAmount(remaining, requested)
		remaining = remaining.Sub(deducted)
		res.Deductions = append(res.Deductions, Deduction{
			Type:             t,
			RequestedAmount:  requested,
			DeductedAmount:   RoundCents(deducted),
			RemainingBalance: RoundCents(requested.Sub(deducted)),
			FullyDeducted:    deducted.GreaterThanOrEqual(requested),
		})
	}

	res.Summary = summarize(res.Deductions, ade)
	return res, nil
}

func summarize(deductions []Deduction, ade decimal.Decimal) SupportPrioritySummary {
	s := SupportPrioritySummary{}
	for _, d := range deductions {
		s.TotalRequested = s.TotalRequested.Add(d.RequestedAmount)
		s.TotalDeducted = s.TotalDeducted.Add(d.DeductedAmount)
		if d.FullyDeducted {
			s.FullySatisfied++
		}
	}
	s.RemainingAllowable = RoundPool(ade.Sub(s.TotalDeducted))
	if s.TotalRequested.IsPositive() {
		s.DeductionEfficiency = s.TotalDeducted.Div(s.TotalRequested).Mul(hundred).Round(2)
	}
	return s
}

// SpousalAndMedicalCalculator exposes the combined support sequence as a
// registry calculator. Its presence in a case supersedes the plain child
// support calculation.
type SpousalAndMedicalCalculator struct {
	Rules *RuleSet
}

func (c *SpousalAndMedicalCalculator) Type() GarnishmentType { return TypeSpousalAndMedical }

func (c *SpousalAndMedicalCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	proc := &SupportPriorityProcessor{Rules: c.Rules}
	out, err := proc.Process(rec, orders)
	if err != nil {
		return nil, err
	}
	return &TypeResult{
		Type:                   TypeSpousalAndMedical,
		Status:                 StatusCompleted,
		WithholdingAmt:         RoundCents(out.Summary.TotalDeducted),
		DisposableEarnings:     out.DisposableEarnings,
		AmountLeftForOtherGarn: poolRemainder(out.DisposableEarnings, out.Summary.TotalDeducted),
		Basis:                  "priority-sequenced support deductions",
	}, nil
}
