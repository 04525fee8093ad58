/*
creditor.go - Creditor debt withholding

PURPOSE:
  Creditor debt is the most state-divergent garnishment type. A handful of
  states prohibit it outright, about a dozen carry closed-form formulas of
  their own, and the rest fall into three shared groups: the general
  two-threshold formula, the minimum-wage compare on disposable earnings,
  and the minimum-wage compare on gross pay.

SEE ALSO:
  - formula.go: the shared evaluators
  - config.go: threshold row resolution
*/
package garnish

import (
	"time"

	"github.com/shopspring/decimal"
)

// creditorProhibited lists states where creditor debt garnishment of wages
// is not allowed at all.
var creditorProhibited = map[string]bool{
	"texas":          true,
	"north carolina": true,
	"south carolina": true,
}

var creditorGeneralStates = map[string]bool{
	"alabama": true, "arkansas": true, "florida": true, "idaho": true,
	"maryland": true, "indiana": true, "kansas": true, "kentucky": true,
	"louisiana": true, "michigan": true, "mississippi": true,
	"montana": true, "new hampshire": true, "ohio": true, "oklahoma": true,
	"rhode island": true, "utah": true, "wyoming": true, "georgia": true,
	"california": true, "colorado": true,
}

var creditorMinWageDEStates = map[string]bool{
	"iowa": true, "washington": true, "illinois": true, "connecticut": true,
	"new mexico": true, "virginia": true, "west virginia": true,
	"wisconsin": true,
}

var creditorMinWageGPStates = map[string]bool{
	"new york": true, "massachusetts": true,
}

// arizonaFormulaCutover gates Arizona between the general formula (orders
// filed before this date) and the minimum-wage compare (on or after).
var arizonaFormulaCutover = time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)

// CreditorDebtCalculator computes the creditor debt withholding for one
// employee pay period.
type CreditorDebtCalculator struct {
	Rules *RuleSet
}

func (c *CreditorDebtCalculator) Type() GarnishmentType { return TypeCreditorDebt }

func (c *CreditorDebtCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	state := NormalizeState(rec.WorkState)
	if creditorProhibited[state] {
		return nil, &NotPermittedError{State: state, Type: TypeCreditorDebt}
	}

	de, err := DisposableEarnings(rec, c.Rules)
	if err != nil {
		return nil, err
	}

	row, err := c.Rules.ResolveConfig(ConfigQuery{
		Type:          TypeCreditorDebt,
		State:         state,
		PayPeriod:     rec.PayPeriod,
		DebtType:      rec.DebtType,
		HomeState:     rec.HomeState,
		GarnStartDate: rec.GarnishmentStartDate,
	})
	if err != nil {
		return nil, err
	}

	eval, err := c.stateFormula(state, rec, de, row)
	if err != nil {
		return nil, err
	}
	eval.WithholdingAmt = FloorZero(eval.WithholdingAmt)

	res := &TypeResult{
		Type:               TypeCreditorDebt,
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

func (c *CreditorDebtCalculator) stateFormula(state string, rec *PayrollRecord, de decimal.Decimal, row *ConfigRow) (Evaluation, error) {
	gp := GrossPay(rec)

	switch state {
	case "arizona":
		if !rec.GarnishmentStartDate.Before(arizonaFormulaCutover) {
			return EvalMinimumWageCompare(de, row), nil
		}
		return EvalGeneralDebt(de, row), nil

	case "alaska":
		if NormalizeState(rec.HomeState) == "alaska" {
			return EvalGeneralDebt(de, row), nil
		}
		return EvalMinimumWageCompare(de, row), nil

	case "vermont":
		switch rec.DebtType {
		case DebtNonConsumer:
			return EvalGeneralDebt(de, row), nil
		case DebtConsumer:
			return EvalMinimumWageCompare(de, row), nil
		}
		return Evaluation{DisposableEarnings: de, Basis: "no debt type", Cap: "no withholding"}, nil

	case "delaware":
		percent := pct(row.PercentLimit)
		return Evaluation{
			WithholdingAmt:     de.Mul(percent),
			DisposableEarnings: de,
			Basis:              "percent limit",
			Cap:                row.PercentLimit.String() + "% of disposable earnings",
		}, nil

	case "new jersey":
		percent := pct(row.PercentLimit)
		return Evaluation{
			WithholdingAmt:     gp.Mul(percent),
			DisposableEarnings: de,
			Basis:              "percent limit on gross pay",
			Cap:                row.PercentLimit.String() + "% of gross pay",
		}, nil

	case "hawaii":
		return hawaiiCreditorDebt(de, row), nil

	case "maine":
		return EvalGeneralDebt(de, row), nil

	case "missouri":
		return missouriCreditorDebt(de, rec.FilingStatus, row), nil

	case "nebraska":
		return nebraskaCreditorDebt(de, rec.FilingStatus, row), nil

	case "north dakota", "south dakota":
		return dakotaCreditorDebt(de, rec.TotalExemptions(), row), nil

	case "tennessee":
		return tennesseeCreditorDebt(de, rec.NoOfDependentChild, row), nil

	case "nevada":
		return nevadaCreditorDebt(gp, de, row), nil

	case "minnesota":
		return minnesotaCreditorDebt(de, row), nil
	}

	switch {
	case creditorGeneralStates[state]:
		return EvalGeneralDebt(de, row), nil
	case creditorMinWageDEStates[state]:
		return EvalMinimumWageCompare(de, row), nil
	case creditorMinWageGPStates[state]:
		return EvalMinimumWageCompare(gp, row), nil
	}

	return Evaluation{}, &ConfigNotFoundError{
		Table: "creditor debt state formulas", State: state, PayPeriod: rec.PayPeriod,
	}
}

// hawaiiCreditorDebt converts weekly DE to a monthly figure, applies the
// statutory banded percentages, converts back to the pay period, and takes
// the lesser of that and the general formula.
func hawaiiCreditorDebt(de decimal.Decimal, row *ConfigRow) Evaluation {
	twoHundred := decimal.NewFromInt(200)
	if de.LessThan(twoHundred) {
		return Evaluation{
			DisposableEarnings: de,
			Basis:              "monthly disposable earnings below floor",
			Cap:                "no withholding",
		}
	}
	mde := de.Mul(decimal.NewFromInt(52)).Div(decimal.NewFromInt(12))
	banded := decimal.NewFromInt(5).
		Add(decimal.NewFromInt(10)).
		Add(decimal.NewFromFloat(0.20).Mul(mde.Sub(twoHundred)))
	weekly := banded.Mul(decimal.NewFromInt(12)).Div(decimal.NewFromInt(52))

	general := EvalGeneralDebt(de, row)
	return Evaluation{
		WithholdingAmt:     MinAmount(weekly, general.WithholdingAmt),
		DisposableEarnings: de,
		Basis:              "monthly banded percentages",
		Cap:                "min(banded monthly amount, " + general.Cap + ")",
	}
}

// missouriCreditorDebt branches on head of household; other statuses use
// the general formula.
func missouriCreditorDebt(de decimal.Decimal, fs FilingStatus, row *ConfigRow) Evaluation {
	if NormalizeFilingStatus(fs) != FilingHeadOfHousehold {
		return EvalGeneralDebt(de, row)
	}
	lower := row.LowerThresholdAmount
	upper := row.UpperThresholdAmount
	fsPct := pct(row.FilingStatusPercent)
	switch {
	case de.LessThanOrEqual(lower):
		return Evaluation{DisposableEarnings: de,
			Basis: "disposable earnings at or below lower threshold", Cap: "no withholding"}
	case de.LessThanOrEqual(upper):
		return Evaluation{
			WithholdingAmt:     FloorZero(upper.Sub(de)),
			DisposableEarnings: de,
			Basis:              "head of household between thresholds",
			Cap:                "upper threshold - disposable earnings",
		}
	default:
		return Evaluation{
			WithholdingAmt:     fsPct.Mul(de),
			DisposableEarnings: de,
			Basis:              "head of household above upper threshold",
			Cap:                row.FilingStatusPercent.String() + "% of disposable earnings",
		}
	}
}

// nebraskaCreditorDebt is Missouri's shape with the usual excess-over-lower
// middle band.
func nebraskaCreditorDebt(de decimal.Decimal, fs FilingStatus, row *ConfigRow) Evaluation {
	if NormalizeFilingStatus(fs) != FilingHeadOfHousehold {
		return EvalGeneralDebt(de, row)
	}
	lower := row.LowerThresholdAmount
	upper := row.UpperThresholdAmount
	fsPct := pct(row.FilingStatusPercent)
	switch {
	case de.LessThanOrEqual(lower):
		return Evaluation{DisposableEarnings: de,
			Basis: "disposable earnings at or below lower threshold", Cap: "no withholding"}
	case de.LessThanOrEqual(upper):
		return Evaluation{
			WithholdingAmt:     de.Sub(lower),
			DisposableEarnings: de,
			Basis:              "head of household between thresholds",
			Cap:                "disposable earnings - lower threshold",
		}
	default:
		return Evaluation{
			WithholdingAmt:     fsPct.Mul(de),
			DisposableEarnings: de,
			Basis:              "head of household above upper threshold",
			Cap:                row.FilingStatusPercent.String() + "% of disposable earnings",
		}
	}
}

// dakotaCreditorDebt applies the minimum-wage compare, then deducts a per
// exemption allowance. A deduction meeting or exceeding the compare result
// zeroes the withholding.
func dakotaCreditorDebt(de decimal.Decimal, exemptions int, row *ConfigRow) Evaluation {
	lower := row.LowerThresholdAmount
	percent := pct(row.LowerThresholdPercent1)
	if de.LessThanOrEqual(lower) {
		return Evaluation{DisposableEarnings: de,
			Basis: "disposable earnings at or below lower threshold", Cap: "no withholding"}
	}
	minAmt := MinAmount(de.Sub(lower), de.Mul(percent))
	if exemptions == 0 {
		return Evaluation{
			WithholdingAmt:     minAmt,
			DisposableEarnings: de,
			Basis:              "no dependent exemptions",
			Cap:                "min(percent of disposable earnings, excess over lower threshold)",
		}
	}
	allowance := row.ExemptAmount.Mul(decimal.NewFromInt(int64(exemptions)))
	if minAmt.LessThanOrEqual(allowance) {
		return Evaluation{DisposableEarnings: de,
			Basis: "dependent exemption covers withholding", Cap: "no withholding"}
	}
	return Evaluation{
		WithholdingAmt:     minAmt.Sub(allowance),
		DisposableEarnings: de,
		Basis:              "dependent exemptions deducted",
		Cap:                "compare result - exemption allowance",
	}
}

// tennesseeCreditorDebt subtracts a per dependent child exemption from the
// general formula result.
func tennesseeCreditorDebt(de decimal.Decimal, children int, row *ConfigRow) Evaluation {
	general := EvalGeneralDebt(de, row)
	if children == 0 {
		return general
	}
	allowance := row.ExemptAmount.Mul(decimal.NewFromInt(int64(children)))
	return Evaluation{
		WithholdingAmt:     FloorZero(general.WithholdingAmt.Sub(allowance)),
		DisposableEarnings: de,
		Basis:              general.Basis,
		Cap:                general.Cap + " - dependent child exemption",
	}
}

var nevadaGrossCeiling = decimal.NewFromInt(770)
var nevadaFlatRate = decimal.NewFromFloat(0.18)

// nevadaCreditorDebt applies a flat 18% of DE for low gross pay, otherwise
// the minimum-wage compare.
func nevadaCreditorDebt(gp, de decimal.Decimal, row *ConfigRow) Evaluation {
	if gp.LessThanOrEqual(nevadaGrossCeiling) {
		return Evaluation{
			WithholdingAmt:     de.Mul(nevadaFlatRate),
			DisposableEarnings: de,
			Basis:              "gross pay at or below 770",
			Cap:                "18% of disposable earnings",
		}
	}
	lower := row.LowerThresholdAmount
	percent := pct(row.LowerThresholdPercent1)
	return Evaluation{
		WithholdingAmt:     MinAmount(de.Sub(lower), de.Mul(percent)),
		DisposableEarnings: de,
		Basis:              "gross pay above 770",
		Cap:                "min(disposable earnings - lower threshold, percent of disposable earnings)",
	}
}

// minnesotaCreditorDebt applies three percent bands keyed on where DE falls
// between the thresholds.
func minnesotaCreditorDebt(de decimal.Decimal, row *ConfigRow) Evaluation {
	lower := row.LowerThresholdAmount
	mid := row.MidThresholdAmount
	upper := row.UpperThresholdAmount
	switch {
	case de.LessThanOrEqual(lower):
		return Evaluation{DisposableEarnings: de,
			Basis: "disposable earnings at or below lower threshold", Cap: "no withholding"}
	case de.LessThanOrEqual(mid):
		p := pct(row.DERangeLowerToMidPercent)
		return Evaluation{
			WithholdingAmt:     p.Mul(de),
			DisposableEarnings: de,
			Basis:              "disposable earnings between lower and mid thresholds",
			Cap:                row.DERangeLowerToMidPercent.String() + "% of disposable earnings",
		}
	case de.LessThanOrEqual(upper):
		p := pct(row.DERangeMidToUpperPercent)
		return Evaluation{
			WithholdingAmt:     p.Mul(de),
			DisposableEarnings: de,
			Basis:              "disposable earnings between mid and upper thresholds",
			Cap:                row.DERangeMidToUpperPercent.String() + "% of disposable earnings",
		}
	default:
		p := pct(row.UpperThresholdPercent)
		return Evaluation{
			WithholdingAmt:     p.Mul(de),
			DisposableEarnings: de,
			Basis:              "disposable earnings above upper threshold",
			Cap:                row.UpperThresholdPercent.String() + "% of disposable earnings",
		}
	}
}
