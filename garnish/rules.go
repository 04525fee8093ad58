/*
rules.go - Rule table types and the RuleSet snapshot

PURPOSE:
  Every calculator reads legal parameters from a RuleSet: threshold rows,
  withholding limit rules, priority orders, fee rules, federal exemption
  tables, and per-state deduction key lists. The RuleSet is built once by
  the factory or the store and shared read-only across calculations.

KEY CONCEPTS:
  - ConfigRow: one exemption threshold row, optionally discriminated by
    debt type, home state, franchise tax board type, or an effective date
  - WithholdingRule: a state's support rule number and allocation method
  - WithholdingLimitRow: the attribute-matched WL percent lookup rows
  - FederalExemptionRow: IRS standard exemption table entries

SEE ALSO:
  - config.go: resolution of the best-matching ConfigRow
  - withholding.go: WL percent resolution
*/
package garnish

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// THRESHOLD CONFIG ROWS
// =============================================================================

// ConfigRow is one exemption threshold entry for a state and pay period.
// Optional discriminator fields widen or narrow its applicability: an empty
// discriminator matches any case (wildcard), a set one must match exactly.
type ConfigRow struct {
	State     string
	PayPeriod PayPeriod

	LowerThresholdAmount decimal.Decimal
	MidThresholdAmount   decimal.Decimal
	UpperThresholdAmount decimal.Decimal

	LowerThresholdPercent1 decimal.Decimal
	LowerThresholdPercent2 decimal.Decimal
	MidThresholdPercent    decimal.Decimal
	UpperThresholdPercent  decimal.Decimal

	DERangeLowerToUpperPercent decimal.Decimal
	DERangeLowerToMidPercent   decimal.Decimal
	DERangeMidToUpperPercent   decimal.Decimal

	ExemptAmount          decimal.Decimal
	FilingStatusPercent   decimal.Decimal
	PercentLimit          decimal.Decimal
	DeductionBasisPercent decimal.Decimal

	// Optional discriminators. Empty string means "any".
	DebtType  DebtType
	HomeState string
	FTBType   FTBType

	// GarnStartDate gates the row: when set, the row applies only to cases
	// whose garnishment start date is on or after it. Zero means always.
	GarnStartDate time.Time
}

// specificity counts how many optional discriminators the row pins down.
// Used as the tie-break after effective date.
func (c *ConfigRow) specificity() int {
	n := 0
	if c.DebtType != "" {
		n++
	}
	if c.HomeState != "" {
		n++
	}
	if c.FTBType != "" {
		n++
	}
	return n
}

// =============================================================================
// SUPPORT WITHHOLDING RULES
// =============================================================================

type AllocationMethod string

const (
	AllocateProrate       AllocationMethod = "prorate"
	AllocateDivideEqually AllocationMethod = "divide equally"
)

// WithholdingRule is a state's support withholding rule metadata.
type WithholdingRule struct {
	State            string
	RuleNumber       int
	AllocationMethod AllocationMethod
}

// DEBand partitions weekly disposable earnings at the $145 boundary for
// rule 6 states.
type DEBand string

const (
	DEBandLE145 DEBand = "LE_145"
	DEBandGT145 DEBand = "GT_145"
)

// OrderCountBand distinguishes single from multiple support orders for
// rule 4 states.
type OrderCountBand string

const (
	OrdersSingle   OrderCountBand = "Single"
	OrdersMultiple OrderCountBand = "Multiple"
)

// WithholdingLimitRow is one attribute-matched WL entry. Fields the state's
// rule number does not consult are empty in the stored rows and nulled in
// the lookup key, so matches are always exact.
type WithholdingLimitRow struct {
	State                string
	RuleNumber           int
	SupportsSecondFamily string // "yes" / "no" / ""
	ArrearsGreater12Wk   string // "yes" / "no" / ""
	OrderCount           OrderCountBand
	DEBand               DEBand
	WorkState            string          // Missouri only
	IssuingState         string          // Missouri only
	WithholdingLimit     decimal.Decimal // percent, 0-100
}

// =============================================================================
// PRIORITY AND FEES
// =============================================================================

// PriorityEntry orders garnishment types within a state for the shared
// 25% pool. Lower numbers are served first.
type PriorityEntry struct {
	State         string
	Type          GarnishmentType
	PriorityOrder int
}

// FeeRule maps a state, garnishment type, and pay period to a named fee
// rule plus an optional flat amount.
type FeeRule struct {
	State     string
	Type      GarnishmentType
	PayPeriod PayPeriod
	Rule      string // "Rule_1" .. "Rule_26"
	Amount    decimal.Decimal
	PayableBy string
}

// =============================================================================
// FEDERAL EXEMPTION TABLE
// =============================================================================

// FederalExemptionRow is one IRS standard exemption table entry. Rows for
// more than five exemptions carry the per-exemption formula instead of a
// flat amount.
type FederalExemptionRow struct {
	Year          int
	FilingStatus  FilingStatus
	PayPeriod     PayPeriod
	NumExemptions int

	ExemptAmount      decimal.Decimal
	ExtraPerExemption decimal.Decimal // set only on the formula row
}

// =============================================================================
// STATE TAX LEVY META
// =============================================================================

// LevyBasis selects which earnings figure a state's tax levy percent
// applies to.
type LevyBasis string

const (
	BasisDisposableEarnings LevyBasis = "disposable_earnings"
	BasisGrossPay           LevyBasis = "gross_pay"
	BasisNetPay             LevyBasis = "net_pay"
)

// StateLevyRow carries a state's tax levy percent and basis. Percent is a
// fraction (0.25 means 25%).
type StateLevyRow struct {
	State   string
	Basis   LevyBasis
	Percent decimal.Decimal
}

// DefaultLevyPercent applies when a state has no levy row percent.
var DefaultLevyPercent = decimal.NewFromFloat(0.25)

// =============================================================================
// RULESET - Read-only configuration snapshot
// =============================================================================

// RuleSet bundles every rule table one calculation run needs. Instances
// are immutable after construction and safe for concurrent readers.
type RuleSet struct {
	// Thresholds holds exemption threshold rows per garnishment type.
	Thresholds map[GarnishmentType][]ConfigRow

	// WithholdingRules maps state name to its support rule metadata.
	WithholdingRules map[string]WithholdingRule

	WithholdingLimits []WithholdingLimitRow
	Priorities        []PriorityEntry
	Fees              []FeeRule
	FederalExemptions []FederalExemptionRow

	// StateLevy maps state name to tax levy percent overrides.
	StateLevy map[string]StateLevyRow

	// DeductionKeys lists, per state, which payroll tax line items count as
	// mandatory deductions when computing disposable earnings.
	DeductionKeys map[string][]string

	// SupportPriorities lists, per state, the deduction-type order used by
	// the support priority processor. Empty falls back to the default order.
	SupportPriorities map[string][]DeductionType
}

// LevyPercent returns the state's tax levy percent, or the default when the
// state carries no override.
func (rs *RuleSet) LevyPercent(state string) decimal.Decimal {
	row, ok := rs.StateLevy[NormalizeState(state)]
	if !ok || row.Percent.IsZero() {
		return DefaultLevyPercent
	}
	return row.Percent
}

// TypePriority returns the state's priority order for a garnishment type.
// Unlisted types sort last.
func (rs *RuleSet) TypePriority(state string, t GarnishmentType) int {
	st := NormalizeState(state)
	for _, p := range rs.Priorities {
		if NormalizeState(p.State) == st && p.Type == t {
			return p.PriorityOrder
		}
	}
	return int(^uint(0) >> 1)
}
