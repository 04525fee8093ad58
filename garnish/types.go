/*
Package garnish implements the wage garnishment withholding engine.

PURPOSE:
  Given an employee's payroll record for one pay period and the set of
  garnishment orders attached to that employee, compute how much each order
  may legally withhold. The engine is pure: every calculation reads a
  RuleSet snapshot passed in by the caller and produces results without
  touching storage or the network.

KEY CONCEPTS IN THIS FILE (types.go):
  - GarnishmentType / PayPeriod / FilingStatus: typed enumerations
  - PayrollRecord: immutable per-employee pay period input
  - Order: a single garnishment order with its requested amounts
  - Money helpers: half-up rounding at cent and pool precision

DESIGN PRINCIPLES:
  1. Immutability: PayrollRecord and Order are never mutated by calculators
  2. Precision: decimal.Decimal everywhere, rounded only at reportable edges
  3. Type Safety: enumerations are typed strings, not bare string keys
  4. No silent zero: a missing rule is an error, never a zero withholding

USAGE:
  rec := &garnish.PayrollRecord{WorkState: "utah", PayPeriod: garnish.PayWeekly, ...}
  calc := garnish.CalculatorFor(garnish.TypeChildSupport)
  res, err := calc.Compute(rec, orders, rules)

SEE ALSO:
  - rules.go: RuleSet and configuration row types
  - errors.go: error taxonomy
  - priority.go: multi-garnishment allocation across types
*/
package garnish

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// FederalMinimumWage is the hourly federal minimum wage used for exempt
// earnings floors.
var FederalMinimumWage = decimal.NewFromFloat(7.25)

// CCPAPoolRate is the share of disposable earnings available to
// non-support garnishments under the consumer credit protection cap.
var CCPAPoolRate = decimal.NewFromFloat(0.25)

// RoundCents rounds half away from zero to cent precision. All reportable
// withholding amounts pass through this before leaving the engine.
func RoundCents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// RoundPool rounds half away from zero to one decimal place. The shared
// 25% pool and allowable disposable earnings are tracked at this precision.
func RoundPool(d decimal.Decimal) decimal.Decimal { return d.Round(1) }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func SumAmounts(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

func MinAmount(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func MaxAmount(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// FloorZero clamps negative intermediate results to zero.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

type GarnishmentType string

const (
	TypeChildSupport      GarnishmentType = "child_support"
	TypeSpousalAndMedical GarnishmentType = "spousal_and_medical_support"
	TypeFederalTaxLevy    GarnishmentType = "federal_tax_levy"
	TypeStateTaxLevy      GarnishmentType = "state_tax_levy"
	TypeCreditorDebt      GarnishmentType = "creditor_debt"
	TypeStudentLoan       GarnishmentType = "student_default_loan"
	TypeBankruptcy        GarnishmentType = "bankruptcy"
	TypeFranchiseTaxBoard GarnishmentType = "franchise_tax_board"
)

// FTBType discriminates franchise tax board order variants.
type FTBType string

const (
	FTBStateTaxLevy FTBType = "state_tax_levy"
	FTBEWOT         FTBType = "ftb_ewot"
	FTBCourt        FTBType = "ftb_court"
	FTBVehicle      FTBType = "ftb_vehicle"
)

type PayPeriod string

const (
	PayWeekly      PayPeriod = "weekly"
	PayBiWeekly    PayPeriod = "bi_weekly"
	PaySemiMonthly PayPeriod = "semi_monthly"
	PayMonthly     PayPeriod = "monthly"
)

// fmwMultipliers converts the hourly federal minimum wage into the exempt
// earnings floor for a pay period (30 hours per workweek equivalent).
var fmwMultipliers = map[PayPeriod]int64{
	PayWeekly:      30,
	PayBiWeekly:    60,
	PaySemiMonthly: 65,
	PayMonthly:     130,
}

// FMWThreshold returns the minimum-wage exempt amount for a pay period.
func FMWThreshold(pp PayPeriod) (decimal.Decimal, error) {
	m, ok := fmwMultipliers[NormalizePayPeriod(pp)]
	if !ok {
		return decimal.Zero, &MissingDataError{Field: "pay_period", Detail: string(pp)}
	}
	return FederalMinimumWage.Mul(decimal.NewFromInt(m)), nil
}

func NormalizePayPeriod(pp PayPeriod) PayPeriod {
	return PayPeriod(strings.ToLower(strings.TrimSpace(string(pp))))
}

type FilingStatus string

const (
	FilingSingle             FilingStatus = "single"
	FilingMarriedJoint       FilingStatus = "married_filing_joint_return"
	FilingMarriedSeparate    FilingStatus = "married_filing_separate_return"
	FilingHeadOfHousehold    FilingStatus = "head_of_household"
	FilingQualifyingWidowers FilingStatus = "qualifying_widowers"
	FilingAnyOther           FilingStatus = "any_other_filing_status"
)

// NormalizeFilingStatus lowercases and folds statuses that share federal
// exemption tables. Qualifying widowers use the joint-return table.
func NormalizeFilingStatus(fs FilingStatus) FilingStatus {
	out := FilingStatus(strings.ToLower(strings.TrimSpace(string(fs))))
	if out == FilingQualifyingWidowers {
		return FilingMarriedJoint
	}
	return out
}

type DebtType string

const (
	DebtConsumer    DebtType = "consumer"
	DebtNonConsumer DebtType = "non consumer"
)

// =============================================================================
// STATE NAMES
// =============================================================================

// stateNames maps two-letter postal abbreviations to the lowercase full
// names used as keys throughout the rule tables.
var stateNames = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut",
	"de": "delaware", "fl": "florida", "ga": "georgia", "hi": "hawaii",
	"id": "idaho", "il": "illinois", "in": "indiana", "ia": "iowa",
	"ks": "kansas", "ky": "kentucky", "la": "louisiana", "me": "maine",
	"md": "maryland", "ma": "massachusetts", "mi": "michigan",
	"mn": "minnesota", "ms": "mississippi", "mo": "missouri",
	"mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico",
	"ny": "new york", "nc": "north carolina", "nd": "north dakota",
	"oh": "ohio", "ok": "oklahoma", "or": "oregon", "pa": "pennsylvania",
	"ri": "rhode island", "sc": "south carolina", "sd": "south dakota",
	"tn": "tennessee", "tx": "texas", "ut": "utah", "vt": "vermont",
	"va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
}

// NormalizeState accepts either a postal abbreviation or a full name and
// returns the lowercase full name.
func NormalizeState(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if full, ok := stateNames[key]; ok {
		return full
	}
	return key
}

// =============================================================================
// PAYROLL RECORD - Per-employee pay period input
// =============================================================================

type PayrollRecord struct {
	EmployeeID string
	ClientID   string

	WorkState    string
	HomeState    string
	IssuingState string

	PayPeriod    PayPeriod
	FilingStatus FilingStatus

	Wages                    decimal.Decimal
	CommissionAndBonus       decimal.Decimal
	NonAccountableAllowances decimal.Decimal
	GrossPay                 decimal.Decimal
	NetPay                   decimal.Decimal

	// PayrollTaxes holds the period's deduction line items keyed by the
	// canonical deduction names the per-state key lists reference.
	PayrollTaxes map[string]decimal.Decimal

	NoOfExemptions      int
	NoOfDependentChild  int
	NoOfStudentLoans    int
	SupportSecondFamily bool
	ArrearsGreater12Wk  bool
	IsBlind             bool
	IsAge65OrOlder      bool
	DebtType            DebtType

	StatementOfExemptionDate time.Time
	GarnishmentStartDate     time.Time
}

// TotalExemptions counts the self exemption plus age and blindness credits.
func (r *PayrollRecord) TotalExemptions() int {
	n := r.NoOfExemptions
	if r.IsBlind {
		n++
	}
	if r.IsAge65OrOlder {
		n++
	}
	return n
}

// =============================================================================
// ORDER - One garnishment order against the employee
// =============================================================================

type Order struct {
	CaseID string
	Type   GarnishmentType

	OrderedAmount decimal.Decimal
	ArrearAmount  decimal.Decimal

	// Support orders break the ordered amount into components.
	CurrentChildSupport   decimal.Decimal
	PastDueChildSupport   decimal.Decimal
	CurrentMedicalSupport decimal.Decimal
	PastDueMedicalSupport decimal.Decimal
	CurrentSpousalSupport decimal.Decimal
	PastDueSpousalSupport decimal.Decimal
	CourtFees             decimal.Decimal
	HousePayment          decimal.Decimal
	InsurancePayment      decimal.Decimal

	BankruptcyAmount decimal.Decimal
	FTBType          FTBType
}
