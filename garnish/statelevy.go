/*
statelevy.go - State tax levy withholding

PURPOSE:
  State tax levies mostly take a flat percent of disposable earnings or
  gross pay, with a handful of states carrying threshold formulas of their
  own. The levy percent comes from the state's StateLevyRow override and
  falls back to 25%.

SEE ALSO:
  - rules.go: StateLevyRow and LevyPercent
  - creditor.go: Arizona delegates to the creditor debt date gate
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

var (
	massachusettsLevyRate = decimal.NewFromFloat(0.15)
	newYorkDERate         = decimal.NewFromFloat(0.25)
	westVirginiaExemptAmt = decimal.NewFromInt(25)
)

// levyGeneralStates use the two-threshold formula with the levy percent in
// the upper band.
var levyGeneralStates = map[string]bool{
	"idaho": true, "georgia": true, "colorado": true, "maine": true,
	"indiana": true, "vermont": true, "iowa": true,
}

// levyFlatDEStates take the levy percent of disposable earnings.
var levyFlatDEStates = map[string]bool{
	"arkansas": true, "kentucky": true, "oregon": true, "utah": true,
	"california": true, "montana": true, "connecticut": true,
	"louisiana": true, "mississippi": true, "missouri": true,
	"virginia": true,
}

// levyFlatGPStates take the levy percent of gross pay.
var levyFlatGPStates = map[string]bool{
	"illinois": true, "new jersey": true, "north carolina": true,
	"pennsylvania": true, "wisconsin": true, "alabama": true, "hawaii": true,
}

type StateTaxLevyCalculator struct {
	Rules *RuleSet
}

func (c *StateTaxLevyCalculator) Type() GarnishmentType { return TypeStateTaxLevy }

func (c *StateTaxLevyCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	state := NormalizeState(rec.WorkState)
	de, err := DisposableEarnings(rec, c.Rules)
	if err != nil {
		return nil, err
	}

	eval, err := c.stateFormula(state, rec, de)
	if err != nil {
		return nil, err
	}
	eval.WithholdingAmt = FloorZero(eval.WithholdingAmt)

	res := &TypeResult{
		Type:               TypeStateTaxLevy,
		Status:             StatusCompleted,
		WithholdingAmt:     RoundCents(eval.WithholdingAmt),
		DisposableEarnings: de,
		Basis:              eval.Basis,
		Cap:                eval.Cap,
	}
	if !GrossPay(rec).IsPositive() {
		res.WithholdingAmt = decimal.Zero
		res.Status = StatusInsufficientPay
	}
	return res, nil
}

func (c *StateTaxLevyCalculator) thresholdRow(state string, rec *PayrollRecord) (*ConfigRow, error) {
	return c.Rules.ResolveConfig(ConfigQuery{
		Type:          TypeStateTaxLevy,
		State:         state,
		PayPeriod:     rec.PayPeriod,
		GarnStartDate: rec.GarnishmentStartDate,
	})
}

func (c *StateTaxLevyCalculator) stateFormula(state string, rec *PayrollRecord, de decimal.Decimal) (Evaluation, error) {
	gp := GrossPay(rec)
	percent := c.Rules.LevyPercent(state)

	flat := func(base decimal.Decimal, label string) Evaluation {
		return Evaluation{
			WithholdingAmt:     base.Mul(percent),
			DisposableEarnings: de,
			Basis:              "flat levy percent",
			Cap:                percent.Mul(hundred).String() + "% of " + label,
		}
	}

	switch state {
	case "arizona":
		// Arizona levies share the creditor debt filing-date gate.
		row, err := c.thresholdRow(state, rec)
		if err != nil {
			return Evaluation{}, err
		}
		if !rec.GarnishmentStartDate.Before(arizonaFormulaCutover) {
			return EvalMinimumWageCompare(de, row), nil
		}
		return EvalGeneralDebt(de, row), nil

	case "massachusetts":
		row, err := c.thresholdRow(state, rec)
		if err != nil {
			return Evaluation{}, err
		}
		rate := percent
		if rate.Equal(DefaultLevyPercent) {
			rate = massachusettsLevyRate
		}
		if de.LessThanOrEqual(row.LowerThresholdAmount) {
			return Evaluation{DisposableEarnings: de,
				Basis: "disposable earnings at or below lower threshold", Cap: "no withholding"}, nil
		}
		return Evaluation{
			WithholdingAmt:     MinAmount(de.Sub(row.LowerThresholdAmount), gp.Mul(rate)),
			DisposableEarnings: de,
			Basis:              "disposable earnings above lower threshold",
			Cap:                "min(percent of gross pay, disposable earnings - lower threshold)",
		}, nil

	case "minnesota", "new mexico":
		row, err := c.thresholdRow(state, rec)
		if err != nil {
			return Evaluation{}, err
		}
		if de.LessThanOrEqual(row.UpperThresholdAmount) {
			return Evaluation{DisposableEarnings: de,
				Basis: "disposable earnings at or below upper threshold", Cap: "no withholding"}, nil
		}
		return Evaluation{
			WithholdingAmt:     MinAmount(de.Sub(row.UpperThresholdAmount), de.Mul(percent)),
			DisposableEarnings: de,
			Basis:              "disposable earnings above upper threshold",
			Cap:                "min(disposable earnings - upper threshold, percent of disposable earnings)",
		}, nil

	case "new york":
		row, err := c.thresholdRow(state, rec)
		if err != nil {
			return Evaluation{}, err
		}
		if de.LessThanOrEqual(row.LowerThresholdAmount) {
			return Evaluation{DisposableEarnings: de,
				Basis: "disposable earnings at or below lower threshold", Cap: "no withholding"}, nil
		}
		return Evaluation{
			WithholdingAmt:     MinAmount(de.Mul(newYorkDERate), gp.Mul(percent)),
			DisposableEarnings: de,
			Basis:              "disposable earnings above lower threshold",
			Cap:                "min(percent of gross pay, 25% of disposable earnings)",
		}, nil

	case "west virginia":
		row, err := c.thresholdRow(state, rec)
		if err != nil {
			return Evaluation{}, err
		}
		exemptions := rec.TotalExemptions()
		if exemptions == 0 {
			return Evaluation{
				WithholdingAmt:     rec.NetPay.Sub(row.LowerThresholdAmount),
				DisposableEarnings: de,
				Basis:              "no additional exemptions",
				Cap:                "net pay - lower threshold",
			}, nil
		}
		exempt := row.LowerThresholdAmount.
			Add(westVirginiaExemptAmt.Mul(decimal.NewFromInt(int64(exemptions))))
		return Evaluation{
			WithholdingAmt:     rec.NetPay.Sub(exempt),
			DisposableEarnings: de,
			Basis:              "exemption-scaled subtraction",
			Cap:                "net pay - (lower threshold + 25 per exemption)",
		}, nil

	case "maryland":
		// Maryland nets out the employee's medical insurance line item.
		medical := decimal.Zero
		if rec.PayrollTaxes != nil {
			for k, v := range rec.PayrollTaxes {
				if canonicalKey(k) == "medical insurance" {
					medical = medical.Add(v)
				}
			}
		}
		ev := flat(de, "disposable earnings")
		ev.WithholdingAmt = ev.WithholdingAmt.Sub(medical)
		ev.Cap += " - medical insurance"
		return ev, nil

	case "delaware":
		return flat(de, "disposable earnings"), nil
	}

	switch {
	case levyGeneralStates[state]:
		row, err := c.thresholdRow(state, rec)
		if err != nil {
			return Evaluation{}, err
		}
		ev := EvalGeneralDebt(de, row)
		// The upper band uses the state's levy percent, not the row percent.
		if de.GreaterThan(row.UpperThresholdAmount) {
			ev.WithholdingAmt = de.Mul(percent)
			ev.Cap = percent.Mul(hundred).String() + "% of disposable earnings"
		}
		return ev, nil

	case levyFlatDEStates[state]:
		return flat(de, "disposable earnings"), nil

	case levyFlatGPStates[state]:
		return flat(gp, "gross pay"), nil
	}

	return Evaluation{}, &ConfigNotFoundError{
		Table: "state tax levy formulas", State: state, PayPeriod: rec.PayPeriod,
	}
}
