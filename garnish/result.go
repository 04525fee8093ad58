// result.go - Result envelopes shared by all calculators.
package garnish

import "github.com/shopspring/decimal"

// CalculationStatus labels a per-type outcome in a multi-garnishment run.
type CalculationStatus string

const (
	StatusCompleted        CalculationStatus = "completed"
	StatusInsufficientPay  CalculationStatus = "insufficient_pay"
	StatusSkippedNoFunds   CalculationStatus = "skipped_due_to_insufficient_fund"
	StatusCalculationError CalculationStatus = "calculation_error"
	StatusNotFound         CalculationStatus = "not_found"
	StatusNotPermitted     CalculationStatus = "not_permitted"
)

// Evaluation is the output of a single formula evaluation: the amount, the
// disposable earnings it was computed from, and a human-readable trace of
// which branch fired.
type Evaluation struct {
	WithholdingAmt     decimal.Decimal
	DisposableEarnings decimal.Decimal
	Basis              string
	Cap                string
}

// CaseAmount is the per-order breakdown for support and student loan
// garnishments, where each case withholds its own current and arrear share.
type CaseAmount struct {
	CaseID         string
	WithholdingAmt decimal.Decimal
	ArrearAmt      decimal.Decimal
}

// TypeResult is one garnishment type's outcome for an employee pay period.
type TypeResult struct {
	Type   GarnishmentType
	Status CalculationStatus

	// WithholdingAmt is the total withheld across the type's orders.
	WithholdingAmt decimal.Decimal

	// Cases breaks the total down per order where the type supports it.
	Cases []CaseAmount

	DisposableEarnings decimal.Decimal
	Basis              string
	Cap                string

	// AmountLeftForOtherGarn is what remains of the 25% pool after this
	// type, reported only by support calculations which track it natively.
	AmountLeftForOtherGarn decimal.Decimal

	// GarnishmentFee is the agency or employer fee attached to the type,
	// when a fee rule applies.
	GarnishmentFee decimal.Decimal
	FeeRule        string

	ErrorDetail string
}

// CaseResult is the full outcome for one employee pay period: the shared
// figures plus one TypeResult per garnishment type processed.
type CaseResult struct {
	EmployeeID string

	DisposableEarnings decimal.Decimal
	TwentyFivePctOfDE  decimal.Decimal

	Results []TypeResult
}

// TotalWithheld sums the completed type withholdings.
func (c *CaseResult) TotalWithheld() decimal.Decimal {
	total := decimal.Zero
	for _, r := range c.Results {
		if r.Status == StatusCompleted {
			total = total.Add(r.WithholdingAmt)
		}
	}
	return total
}
