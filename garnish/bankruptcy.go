/*
bankruptcy.go - Bankruptcy order withholding

PURPOSE:
  Bankruptcy plans claim what remains of disposable earnings after support
  obligations. A quarter of that remainder is available; when it does not
  clear the minimum-wage exempt floor nothing is withheld.
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

type BankruptcyCalculator struct {
	Rules *RuleSet
}

func (c *BankruptcyCalculator) Type() GarnishmentType { return TypeBankruptcy }

func (c *BankruptcyCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	if len(orders) == 0 {
		return nil, &MissingDataError{Field: "garnishment_data", Detail: "no bankruptcy order"}
	}
	order := orders[0]

	de, err := DisposableEarnings(rec, c.Rules)
	if err != nil {
		return nil, err
	}
	fmw, err := FMWThreshold(rec.PayPeriod)
	if err != nil {
		return nil, err
	}

	support := order.CurrentChildSupport.Add(order.CurrentSpousalSupport)
	allowable := FloorZero(de.Sub(support))
	available := CCPAPoolRate.Mul(allowable)

	res := &TypeResult{
		Type:               TypeBankruptcy,
		Status:             StatusCompleted,
		DisposableEarnings: de,
	}

	if available.LessThanOrEqual(fmw) {
		res.Basis = "available amount at or below exempt floor"
		res.Cap = "no withholding"
		return res, nil
	}

	res.WithholdingAmt = RoundCents(MinAmount(available, order.BankruptcyAmount))
	res.Basis = "25% of disposable earnings net of support"
	res.Cap = "min(available amount, bankruptcy amount)"
	if !GrossPay(rec).IsPositive() {
		res.WithholdingAmt = decimal.Zero
		res.Status = StatusInsufficientPay
	}
	return res, nil
}
