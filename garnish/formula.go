/*
formula.go - Shared withholding formula evaluators

PURPOSE:
  Three formula shapes recur across states. Each takes disposable earnings
  and a resolved threshold row and returns an Evaluation with the amount
  and a trace of which branch fired.

  General two-threshold:
    DE <= lower            -> 0
    lower < DE <= upper    -> DE - lower
    DE > upper             -> upper_percent * DE

  Minimum-wage compare:
    DE <= lower            -> 0
    DE > lower             -> min(DE - lower, lower_percent1 * DE)

  Graduated three-band:
    DE <= lower            -> 0
    lower < DE <= upper    -> (DE - lower) * lower_to_upper_percent
    DE > upper             -> upper_percent * DE

  Threshold percents are stored as whole numbers (25 means 25%).

SEE ALSO:
  - creditor.go, ftb.go: the calculators dispatching into these
*/
package garnish

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func pct(whole decimal.Decimal) decimal.Decimal { return whole.Div(hundred) }

// EvalGeneralDebt applies the general two-threshold formula.
func EvalGeneralDebt(de decimal.Decimal, row *ConfigRow) Evaluation {
	lower := row.LowerThresholdAmount
	upper := row.UpperThresholdAmount
	upperPct := pct(row.UpperThresholdPercent)

	switch {
	case de.LessThanOrEqual(lower):
		return Evaluation{
			WithholdingAmt:     decimal.Zero,
			DisposableEarnings: de,
			Basis:              "disposable earnings at or below lower threshold",
			Cap:                "no withholding",
		}
	case de.LessThanOrEqual(upper):
		return Evaluation{
			WithholdingAmt:     de.Sub(lower),
			DisposableEarnings: de,
			Basis:              "disposable earnings between thresholds",
			Cap:                "disposable earnings - lower threshold",
		}
	default:
		return Evaluation{
			WithholdingAmt:     upperPct.Mul(de),
			DisposableEarnings: de,
			Basis:              "disposable earnings above upper threshold",
			Cap:                fmt.Sprintf("%s%% of disposable earnings", row.UpperThresholdPercent),
		}
	}
}

// EvalMinimumWageCompare applies the minimum-wage compare formula, taking
// the lesser of the excess over the exempt floor and a percent of the base.
func EvalMinimumWageCompare(de decimal.Decimal, row *ConfigRow) Evaluation {
	lower := row.LowerThresholdAmount
	percent := pct(row.LowerThresholdPercent1)

	if de.LessThanOrEqual(lower) {
		return Evaluation{
			WithholdingAmt:     decimal.Zero,
			DisposableEarnings: de,
			Basis:              "disposable earnings at or below exempt floor",
			Cap:                "no withholding",
		}
	}
	excess := de.Sub(lower)
	share := de.Mul(percent)
	return Evaluation{
		WithholdingAmt:     MinAmount(excess, share),
		DisposableEarnings: de,
		Basis:              "disposable earnings above exempt floor",
		Cap: fmt.Sprintf("min(%s%% of disposable earnings, disposable earnings - exempt floor)",
			row.LowerThresholdPercent1),
	}
}

// EvalGraduated applies the graduated three-band formula used by franchise
// tax board court and vehicle orders.
func EvalGraduated(de decimal.Decimal, row *ConfigRow) Evaluation {
	lower := row.LowerThresholdAmount
	upper := row.UpperThresholdAmount
	bandPct := pct(row.DERangeLowerToUpperPercent)
	upperPct := pct(row.UpperThresholdPercent)

	switch {
	case de.LessThanOrEqual(lower):
		return Evaluation{
			WithholdingAmt:     decimal.Zero,
			DisposableEarnings: de,
			Basis:              "disposable earnings at or below lower threshold",
			Cap:                "no withholding",
		}
	case de.LessThanOrEqual(upper):
		return Evaluation{
			WithholdingAmt:     de.Sub(lower).Mul(bandPct),
			DisposableEarnings: de,
			Basis:              "disposable earnings between thresholds",
			Cap: fmt.Sprintf("(disposable earnings - lower threshold) * %s%%",
				row.DERangeLowerToUpperPercent),
		}
	default:
		return Evaluation{
			WithholdingAmt:     upperPct.Mul(de),
			DisposableEarnings: de,
			Basis:              "disposable earnings above upper threshold",
			Cap:                fmt.Sprintf("%s%% of disposable earnings", row.UpperThresholdPercent),
		}
	}
}
