/*
federallevy.go - Federal tax levy withholding

PURPOSE:
  IRS levies exempt a standard amount per pay period, looked up by tax
  year, filing status, and exemption count; everything above the exempt
  amount is withheld from net pay. The exemption table is a mandatory
  dependency: a missing row must fail the calculation, since an invented
  exempt amount has legal consequences.

TABLE SHAPE:
  Rows for 1..5 exemptions carry a flat exempt amount. The 6-exemption
  row doubles as the open-ended formula row: exempt = base + extra per
  exemption, applied for any count above five.
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

type FederalTaxLevyCalculator struct {
	Rules *RuleSet
}

func (c *FederalTaxLevyCalculator) Type() GarnishmentType { return TypeFederalTaxLevy }

func (c *FederalTaxLevyCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	if rec.StatementOfExemptionDate.IsZero() {
		return nil, &MissingDataError{Field: "statement_of_exemption_received_date"}
	}

	exempt, err := c.standardExemptAmount(rec)
	if err != nil {
		return nil, err
	}

	de, err := DisposableEarnings(rec, c.Rules)
	if err != nil {
		return nil, err
	}

	withholding := FloorZero(RoundCents(rec.NetPay.Sub(exempt)))
	res := &TypeResult{
		Type:               TypeFederalTaxLevy,
		Status:             StatusCompleted,
		WithholdingAmt:     withholding,
		DisposableEarnings: de,
		Basis:              "net pay above standard exemption",
		Cap:                "net pay - standard exempt amount",
	}
	if !GrossPay(rec).IsPositive() {
		res.WithholdingAmt = decimal.Zero
		res.Status = StatusInsufficientPay
	}
	return res, nil
}

func (c *FederalTaxLevyCalculator) standardExemptAmount(rec *PayrollRecord) (decimal.Decimal, error) {
	year := rec.StatementOfExemptionDate.Year()
	status := NormalizeFilingStatus(rec.FilingStatus)
	period := NormalizePayPeriod(rec.PayPeriod)

	exemptions := rec.NoOfExemptions
	query := exemptions
	if exemptions > 5 {
		query = 6
	}

	for _, row := range c.Rules.FederalExemptions {
		if row.Year != year {
			continue
		}
		if NormalizeFilingStatus(row.FilingStatus) != status {
			continue
		}
		if NormalizePayPeriod(row.PayPeriod) != period {
			continue
		}
		if row.NumExemptions != query {
			continue
		}
		if exemptions <= 5 {
			return row.ExemptAmount, nil
		}
		extra := row.ExtraPerExemption.Mul(decimal.NewFromInt(int64(exemptions)))
		return RoundCents(row.ExemptAmount.Add(extra)), nil
	}

	return decimal.Zero, &ConfigNotFoundError{
		Table: "federal standard exemptions", State: NormalizeState(rec.WorkState),
		PayPeriod: rec.PayPeriod,
		Detail:    "no row for the employee's filing status, exemption count, and year",
	}
}
