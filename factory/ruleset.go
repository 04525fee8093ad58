/*
Package factory provides JSON to Go rule set conversion.

PURPOSE:
  Converts JSON rule definitions into a garnish.RuleSet. This enables
  rule configuration without code changes - compliance analysts can
  maintain threshold tables, withholding limits, and fee schedules in
  JSON, and the factory builds the typed rule set the calculators read.

WHY JSON?
  - Non-developers can update legal parameters
  - Easy integration with an admin UI
  - Version control for rule revisions
  - Database storage of rule snapshots

JSON SCHEMA:
  {
    "thresholds": {
      "creditor_debt": [
        {
          "state": "utah",
          "pay_period": "weekly",
          "lower_threshold_amount": 217.50,
          "upper_threshold_amount": 290.00,
          "upper_threshold_percent": 25
        }
      ]
    },
    "withholding_rules": [
      {"state": "california", "rule": 1, "allocation_method": "prorate"}
    ],
    "withholding_limits": [
      {
        "state": "california",
        "rule": 1,
        "supports_2nd_family": "no",
        "arrears_more_than_12_weeks": "no",
        "withholding_limit": 50
      }
    ],
    "priorities": [
      {"state": "california", "garnishment_type": "child_support", "priority_order": 1}
    ],
    "fees": [
      {"state": "illinois", "garnishment_type": "creditor_debt",
       "pay_period": "weekly", "rule": "Rule_5", "payable_by": "employee"}
    ],
    "federal_exemptions": [...],
    "state_levy": [...],
    "deduction_keys": {"california": ["federal income tax", ...]},
    "support_priorities": {"california": ["current_child_support", ...]}
  }

USAGE:
  factory := NewRuleSetFactory()
  rules, err := factory.ParseRuleSet(jsonBytes)

  reg := garnish.NewRegistry(rules)

SEE ALSO:
  - garnish/rules.go: RuleSet type definition
  - store/sqlite: persisted rule snapshots
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garnishedge/garnish-engine/garnish"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleSetJSON is the JSON representation of a full rule set.
type RuleSetJSON struct {
	Thresholds        map[string][]ThresholdJSON `json:"thresholds,omitempty"`
	WithholdingRules  []WithholdingRuleJSON      `json:"withholding_rules,omitempty"`
	WithholdingLimits []WithholdingLimitJSON     `json:"withholding_limits,omitempty"`
	Priorities        []PriorityJSON             `json:"priorities,omitempty"`
	Fees              []FeeJSON                  `json:"fees,omitempty"`
	FederalExemptions []FederalExemptionJSON     `json:"federal_exemptions,omitempty"`
	StateLevy         []StateLevyJSON            `json:"state_levy,omitempty"`
	DeductionKeys     map[string][]string        `json:"deduction_keys,omitempty"`
	SupportPriorities map[string][]string        `json:"support_priorities,omitempty"`
}

// ThresholdJSON is one exemption threshold row.
type ThresholdJSON struct {
	State     string `json:"state"`
	PayPeriod string `json:"pay_period"`

	LowerThresholdAmount decimal.Decimal `json:"lower_threshold_amount"`
	MidThresholdAmount   decimal.Decimal `json:"mid_threshold_amount"`
	UpperThresholdAmount decimal.Decimal `json:"upper_threshold_amount"`

	LowerThresholdPercent1 decimal.Decimal `json:"lower_threshold_percent1"`
	LowerThresholdPercent2 decimal.Decimal `json:"lower_threshold_percent2"`
	MidThresholdPercent    decimal.Decimal `json:"mid_threshold_percent"`
	UpperThresholdPercent  decimal.Decimal `json:"upper_threshold_percent"`

	DERangeLowerToUpperPercent decimal.Decimal `json:"de_range_lower_to_upper_threshold_percent"`
	DERangeLowerToMidPercent   decimal.Decimal `json:"de_range_lower_to_mid_threshold_percent"`
	DERangeMidToUpperPercent   decimal.Decimal `json:"de_range_mid_to_upper_threshold_percent"`

	ExemptAmount          decimal.Decimal `json:"exempt_amount"`
	FilingStatusPercent   decimal.Decimal `json:"filing_status_percent"`
	PercentLimit          decimal.Decimal `json:"percent_limit"`
	DeductionBasisPercent decimal.Decimal `json:"deduction_basis_percent"`

	DebtType      string `json:"debt_type,omitempty"`
	HomeState     string `json:"home_state,omitempty"`
	FTBType       string `json:"ftb_type,omitempty"`
	GarnStartDate string `json:"garn_start_date,omitempty"` // YYYY-MM-DD
}

// WithholdingRuleJSON is a state's support rule metadata.
type WithholdingRuleJSON struct {
	State            string `json:"state"`
	Rule             int    `json:"rule"`
	AllocationMethod string `json:"allocation_method"`
}

// WithholdingLimitJSON is one attribute-matched WL row.
type WithholdingLimitJSON struct {
	State                string          `json:"state"`
	Rule                 int             `json:"rule"`
	SupportsSecondFamily string          `json:"supports_2nd_family,omitempty"`
	ArrearsGreater12Wk   string          `json:"arrears_more_than_12_weeks,omitempty"`
	OrderCount           string          `json:"number_of_orders,omitempty"`
	DEBand               string          `json:"de_range,omitempty"`
	WorkState            string          `json:"work_state,omitempty"`
	IssuingState         string          `json:"issuing_state,omitempty"`
	WithholdingLimit     decimal.Decimal `json:"withholding_limit"`
}

// PriorityJSON orders a garnishment type within a state.
type PriorityJSON struct {
	State         string `json:"state"`
	Type          string `json:"garnishment_type"`
	PriorityOrder int    `json:"priority_order"`
}

// FeeJSON maps a state, type, and pay period to a fee rule.
type FeeJSON struct {
	State     string          `json:"state"`
	Type      string          `json:"garnishment_type"`
	PayPeriod string          `json:"pay_period"`
	Rule      string          `json:"rule"`
	Amount    decimal.Decimal `json:"amount,omitempty"`
	PayableBy string          `json:"payable_by,omitempty"`
}

// FederalExemptionJSON is one IRS standard exemption table entry.
type FederalExemptionJSON struct {
	Year              int             `json:"year"`
	FilingStatus      string          `json:"filing_status"`
	PayPeriod         string          `json:"pay_period"`
	NumExemptions     int             `json:"num_exemptions"`
	ExemptAmount      decimal.Decimal `json:"exempt_amount"`
	ExtraPerExemption decimal.Decimal `json:"extra_per_exemption,omitempty"`
}

// StateLevyJSON carries a state's tax levy percent override.
type StateLevyJSON struct {
	State   string          `json:"state"`
	Basis   string          `json:"basis,omitempty"`
	Percent decimal.Decimal `json:"percent"`
}

// =============================================================================
// RULE SET FACTORY
// =============================================================================

// RuleSetFactory converts JSON rule definitions to a garnish.RuleSet.
type RuleSetFactory struct{}

// NewRuleSetFactory creates a new rule set factory.
func NewRuleSetFactory() *RuleSetFactory {
	return &RuleSetFactory{}
}

// ParseRuleSet parses JSON bytes into a RuleSet.
func (f *RuleSetFactory) ParseRuleSet(data []byte) (*garnish.RuleSet, error) {
	var rj RuleSetJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rule set JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts RuleSetJSON to a garnish.RuleSet.
func (f *RuleSetFactory) FromJSON(rj RuleSetJSON) (*garnish.RuleSet, error) {
	rs := &garnish.RuleSet{
		Thresholds:        make(map[garnish.GarnishmentType][]garnish.ConfigRow),
		WithholdingRules:  make(map[string]garnish.WithholdingRule),
		StateLevy:         make(map[string]garnish.StateLevyRow),
		DeductionKeys:     make(map[string][]string),
		SupportPriorities: make(map[string][]garnish.DeductionType),
	}

	for gtype, rows := range rj.Thresholds {
		t := garnish.GarnishmentType(gtype)
		for _, row := range rows {
			cr, err := parseThreshold(row)
			if err != nil {
				return nil, fmt.Errorf("threshold for %s/%s: %w", gtype, row.State, err)
			}
			rs.Thresholds[t] = append(rs.Thresholds[t], cr)
		}
	}

	for _, wr := range rj.WithholdingRules {
		state := garnish.NormalizeState(wr.State)
		rs.WithholdingRules[state] = garnish.WithholdingRule{
			State:            state,
			RuleNumber:       wr.Rule,
			AllocationMethod: garnish.AllocationMethod(wr.AllocationMethod),
		}
	}

	for _, wl := range rj.WithholdingLimits {
		rs.WithholdingLimits = append(rs.WithholdingLimits, garnish.WithholdingLimitRow{
			State:                garnish.NormalizeState(wl.State),
			RuleNumber:           wl.Rule,
			SupportsSecondFamily: wl.SupportsSecondFamily,
			ArrearsGreater12Wk:   wl.ArrearsGreater12Wk,
			OrderCount:           garnish.OrderCountBand(wl.OrderCount),
			DEBand:               garnish.DEBand(wl.DEBand),
			WorkState:            garnish.NormalizeState(wl.WorkState),
			IssuingState:         garnish.NormalizeState(wl.IssuingState),
			WithholdingLimit:     wl.WithholdingLimit,
		})
	}

	for _, p := range rj.Priorities {
		rs.Priorities = append(rs.Priorities, garnish.PriorityEntry{
			State:         garnish.NormalizeState(p.State),
			Type:          garnish.GarnishmentType(p.Type),
			PriorityOrder: p.PriorityOrder,
		})
	}

	for _, fee := range rj.Fees {
		rs.Fees = append(rs.Fees, garnish.FeeRule{
			State:     garnish.NormalizeState(fee.State),
			Type:      garnish.GarnishmentType(fee.Type),
			PayPeriod: garnish.PayPeriod(fee.PayPeriod),
			Rule:      fee.Rule,
			Amount:    fee.Amount,
			PayableBy: fee.PayableBy,
		})
	}

	for _, fe := range rj.FederalExemptions {
		rs.FederalExemptions = append(rs.FederalExemptions, garnish.FederalExemptionRow{
			Year:              fe.Year,
			FilingStatus:      garnish.FilingStatus(fe.FilingStatus),
			PayPeriod:         garnish.PayPeriod(fe.PayPeriod),
			NumExemptions:     fe.NumExemptions,
			ExemptAmount:      fe.ExemptAmount,
			ExtraPerExemption: fe.ExtraPerExemption,
		})
	}

	for _, sl := range rj.StateLevy {
		state := garnish.NormalizeState(sl.State)
		rs.StateLevy[state] = garnish.StateLevyRow{
			State:   state,
			Basis:   parseLevyBasis(sl.Basis),
			Percent: sl.Percent,
		}
	}

	for state, keys := range rj.DeductionKeys {
		rs.DeductionKeys[garnish.NormalizeState(state)] = keys
	}

	for state, order := range rj.SupportPriorities {
		types := make([]garnish.DeductionType, 0, len(order))
		for _, t := range order {
			types = append(types, garnish.DeductionType(t))
		}
		rs.SupportPriorities[garnish.NormalizeState(state)] = types
	}

	return rs, nil
}

// ToJSON converts a RuleSet back to its JSON representation.
func (f *RuleSetFactory) ToJSON(rs *garnish.RuleSet) RuleSetJSON {
	rj := RuleSetJSON{
		Thresholds:        make(map[string][]ThresholdJSON),
		DeductionKeys:     rs.DeductionKeys,
		SupportPriorities: make(map[string][]string),
	}

	for gtype, rows := range rs.Thresholds {
		for _, row := range rows {
			rj.Thresholds[string(gtype)] = append(rj.Thresholds[string(gtype)], formatThreshold(row))
		}
	}
	for _, wr := range rs.WithholdingRules {
		rj.WithholdingRules = append(rj.WithholdingRules, WithholdingRuleJSON{
			State: wr.State, Rule: wr.RuleNumber, AllocationMethod: string(wr.AllocationMethod),
		})
	}
	for _, wl := range rs.WithholdingLimits {
		rj.WithholdingLimits = append(rj.WithholdingLimits, WithholdingLimitJSON{
			State: wl.State, Rule: wl.RuleNumber,
			SupportsSecondFamily: wl.SupportsSecondFamily,
			ArrearsGreater12Wk:   wl.ArrearsGreater12Wk,
			OrderCount:           string(wl.OrderCount),
			DEBand:               string(wl.DEBand),
			WorkState:            wl.WorkState,
			IssuingState:         wl.IssuingState,
			WithholdingLimit:     wl.WithholdingLimit,
		})
	}
	for _, p := range rs.Priorities {
		rj.Priorities = append(rj.Priorities, PriorityJSON{
			State: p.State, Type: string(p.Type), PriorityOrder: p.PriorityOrder,
		})
	}
	for _, fee := range rs.Fees {
		rj.Fees = append(rj.Fees, FeeJSON{
			State: fee.State, Type: string(fee.Type), PayPeriod: string(fee.PayPeriod),
			Rule: fee.Rule, Amount: fee.Amount, PayableBy: fee.PayableBy,
		})
	}
	for _, fe := range rs.FederalExemptions {
		rj.FederalExemptions = append(rj.FederalExemptions, FederalExemptionJSON{
			Year: fe.Year, FilingStatus: string(fe.FilingStatus),
			PayPeriod: string(fe.PayPeriod), NumExemptions: fe.NumExemptions,
			ExemptAmount: fe.ExemptAmount, ExtraPerExemption: fe.ExtraPerExemption,
		})
	}
	for _, sl := range rs.StateLevy {
		rj.StateLevy = append(rj.StateLevy, StateLevyJSON{
			State: sl.State, Basis: string(sl.Basis), Percent: sl.Percent,
		})
	}
	for state, order := range rs.SupportPriorities {
		out := make([]string, 0, len(order))
		for _, t := range order {
			out = append(out, string(t))
		}
		rj.SupportPriorities[state] = out
	}

	return rj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseThreshold(tj ThresholdJSON) (garnish.ConfigRow, error) {
	row := garnish.ConfigRow{
		State:     garnish.NormalizeState(tj.State),
		PayPeriod: garnish.PayPeriod(tj.PayPeriod),

		LowerThresholdAmount: tj.LowerThresholdAmount,
		MidThresholdAmount:   tj.MidThresholdAmount,
		UpperThresholdAmount: tj.UpperThresholdAmount,

		LowerThresholdPercent1: tj.LowerThresholdPercent1,
		LowerThresholdPercent2: tj.LowerThresholdPercent2,
		MidThresholdPercent:    tj.MidThresholdPercent,
		UpperThresholdPercent:  tj.UpperThresholdPercent,

		DERangeLowerToUpperPercent: tj.DERangeLowerToUpperPercent,
		DERangeLowerToMidPercent:   tj.DERangeLowerToMidPercent,
		DERangeMidToUpperPercent:   tj.DERangeMidToUpperPercent,

		ExemptAmount:          tj.ExemptAmount,
		FilingStatusPercent:   tj.FilingStatusPercent,
		PercentLimit:          tj.PercentLimit,
		DeductionBasisPercent: tj.DeductionBasisPercent,

		DebtType:  garnish.DebtType(tj.DebtType),
		HomeState: garnish.NormalizeState(tj.HomeState),
		FTBType:   garnish.FTBType(tj.FTBType),
	}
	if tj.GarnStartDate != "" {
		date, err := time.Parse("2006-01-02", tj.GarnStartDate)
		if err != nil {
			return row, fmt.Errorf("invalid garn_start_date: %w", err)
		}
		row.GarnStartDate = date
	}
	return row, nil
}

func formatThreshold(row garnish.ConfigRow) ThresholdJSON {
	tj := ThresholdJSON{
		State:     row.State,
		PayPeriod: string(row.PayPeriod),

		LowerThresholdAmount: row.LowerThresholdAmount,
		MidThresholdAmount:   row.MidThresholdAmount,
		UpperThresholdAmount: row.UpperThresholdAmount,

		LowerThresholdPercent1: row.LowerThresholdPercent1,
		LowerThresholdPercent2: row.LowerThresholdPercent2,
		MidThresholdPercent:    row.MidThresholdPercent,
		UpperThresholdPercent:  row.UpperThresholdPercent,

		DERangeLowerToUpperPercent: row.DERangeLowerToUpperPercent,
		DERangeLowerToMidPercent:   row.DERangeLowerToMidPercent,
		DERangeMidToUpperPercent:   row.DERangeMidToUpperPercent,

		ExemptAmount:          row.ExemptAmount,
		FilingStatusPercent:   row.FilingStatusPercent,
		PercentLimit:          row.PercentLimit,
		DeductionBasisPercent: row.DeductionBasisPercent,

		DebtType:  string(row.DebtType),
		HomeState: row.HomeState,
		FTBType:   string(row.FTBType),
	}
	if !row.GarnStartDate.IsZero() {
		tj.GarnStartDate = row.GarnStartDate.Format("2006-01-02")
	}
	return tj
}

func parseLevyBasis(s string) garnish.LevyBasis {
	switch s {
	case "gross_pay":
		return garnish.BasisGrossPay
	case "net_pay":
		return garnish.BasisNetPay
	default:
		return garnish.BasisDisposableEarnings
	}
}
