/*
earnings.go - Gross pay and disposable earnings

PURPOSE:
  Disposable earnings are the base of nearly every withholding formula:
  gross pay minus the mandatory deductions the work state recognizes.
  Which payroll tax line items count as mandatory varies by state, so the
  calculation is driven by the RuleSet's per-state deduction key lists.

SEE ALSO:
  - formula.go: evaluators that consume disposable earnings
  - rules.go: DeductionKeys on RuleSet
*/
package garnish

import (
	"strings"

	"github.com/shopspring/decimal"
)

// keyAliases folds common payroll export spellings onto the canonical
// deduction key names the state lists use.
var keyAliases = map[string]string{
	"fed tax amt":          "federal income tax",
	"federal tax":          "federal income tax",
	"fica":                 "social security tax",
	"social security":      "social security tax",
	"medicare":             "medicare tax",
	"state tax":            "state income tax",
	"sdi":                  "state disability insurance",
	"sdi tax":              "state disability insurance",
	"city tax":             "local tax",
	"wilmington tax":       "local tax",
	"med insurance":        "medical insurance",
	"industrial insurance": "industrial insurance",
}

func canonicalKey(k string) string {
	key := strings.ToLower(strings.TrimSpace(k))
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}

// GrossPay is wages plus commission and bonus plus non-accountable
// allowances. When the record already carries a gross pay figure that one
// wins; payroll systems sometimes include items we cannot reconstruct.
func GrossPay(rec *PayrollRecord) decimal.Decimal {
	if rec.GrossPay.IsPositive() {
		return rec.GrossPay
	}
	return rec.Wages.Add(rec.CommissionAndBonus).Add(rec.NonAccountableAllowances)
}

// MandatoryDeductions sums the payroll tax line items the work state treats
// as mandatory. A state with no deduction key list is a configuration
// error, not a zero.
func MandatoryDeductions(rec *PayrollRecord, rules *RuleSet) (decimal.Decimal, error) {
	state := NormalizeState(rec.WorkState)
	keys, ok := rules.DeductionKeys[state]
	if !ok {
		return decimal.Zero, &ConfigNotFoundError{
			Table: "disposable earnings deduction keys", State: state,
			PayPeriod: rec.PayPeriod,
		}
	}
	if rec.PayrollTaxes == nil {
		return decimal.Zero, &MissingDataError{Field: "payroll_taxes"}
	}

	taxes := make(map[string]decimal.Decimal, len(rec.PayrollTaxes))
	for k, v := range rec.PayrollTaxes {
		key := canonicalKey(k)
		taxes[key] = taxes[key].Add(v)
	}

	total := decimal.Zero
	for _, k := range keys {
		if v, ok := taxes[canonicalKey(k)]; ok {
			total = total.Add(v)
		}
	}
	return total, nil
}

// DisposableEarnings is gross pay minus the state's mandatory deductions,
// floored at zero. Every downstream formula and the 25% pool assume a
// non-negative base.
func DisposableEarnings(rec *PayrollRecord, rules *RuleSet) (decimal.Decimal, error) {
	deductions, err := MandatoryDeductions(rec, rules)
	if err != nil {
		return decimal.Zero, err
	}
	return FloorZero(GrossPay(rec).Sub(deductions)), nil
}
