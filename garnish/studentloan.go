/*
studentloan.go - Defaulted student loan withholding

PURPOSE:
  Federal student loan garnishments take 15% of disposable earnings per
  loan, limited by the CCPA cap and the minimum-wage exempt floor. A
  second concurrent loan drops to 10%. Earnings at or below the exempt
  floor cannot be garnished at all.
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

var (
	studentLoanLowerRate = decimal.NewFromFloat(0.10)
	studentLoanMidRate   = decimal.NewFromFloat(0.15)
	studentLoanUpperRate = decimal.NewFromFloat(0.25)
)

type StudentLoanCalculator struct {
	Rules *RuleSet
}

func (c *StudentLoanCalculator) Type() GarnishmentType { return TypeStudentLoan }

func (c *StudentLoanCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	count := rec.NoOfStudentLoans
	if count == 0 {
		count = len(orders)
	}
	if count == 0 {
		return &TypeResult{
			Type:   TypeStudentLoan,
			Status: StatusCompleted,
			Cases:  []CaseAmount{{WithholdingAmt: decimal.Zero}},
		}, nil
	}

	de, err := DisposableEarnings(rec, c.Rules)
	if err != nil {
		return nil, err
	}
	fmw, err := FMWThreshold(rec.PayPeriod)
	if err != nil {
		return nil, err
	}

	res := &TypeResult{
		Type:               TypeStudentLoan,
		Status:             StatusCompleted,
		DisposableEarnings: de,
	}

	if de.LessThanOrEqual(fmw) {
		res.Status = StatusInsufficientPay
		res.Basis = "disposable earnings at or below exempt amount"
		res.ErrorDetail = "student loan withholding cannot be applied because disposable earnings are less than or equal to the exempt amount"
		return res, nil
	}

	caseID := func(i int) string {
		if i < len(orders) {
			return orders[i].CaseID
		}
		return ""
	}

	if count == 1 {
		amt := RoundCents(decimal.Min(
			de.Mul(studentLoanMidRate),
			de.Mul(studentLoanUpperRate),
			de.Sub(fmw),
		))
		res.Cases = []CaseAmount{{CaseID: caseID(0), WithholdingAmt: amt}}
		res.WithholdingAmt = amt
		res.Basis = "min(15% of disposable earnings, 25% of disposable earnings, disposable earnings - exempt amount)"
		return res, nil
	}

	first := RoundCents(de.Mul(studentLoanMidRate))
	second := RoundCents(de.Mul(studentLoanLowerRate))
	res.Cases = []CaseAmount{
		{CaseID: caseID(0), WithholdingAmt: first},
		{CaseID: caseID(1), WithholdingAmt: second},
	}
	res.WithholdingAmt = first.Add(second)
	res.Basis = "15% and 10% of disposable earnings"
	return res, nil
}
