/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal calculation model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Input:
    PayrollDTO, OrderDTO, CaseDTO, BatchRequest

  Output:
    TypeResultDTO, CaseAmountDTO, CaseResultDTO, BatchResponse

  Rules:
    RuleSetInfoDTO (wraps factory.RuleSetJSON uploads)

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/ruleset.go: RuleSetJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garnishedge/garnish-engine/garnish"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PayrollDTO is one employee's pay period input.
type PayrollDTO struct {
	EmployeeID   string `json:"ee_id"`
	ClientID     string `json:"client_id,omitempty"`
	WorkState    string `json:"work_state"`
	HomeState    string `json:"home_state,omitempty"`
	IssuingState string `json:"issuing_state,omitempty"`
	PayPeriod    string `json:"pay_period"`
	FilingStatus string `json:"filing_status,omitempty"`

	Wages                    decimal.Decimal `json:"wages"`
	CommissionAndBonus       decimal.Decimal `json:"commission_and_bonus,omitempty"`
	NonAccountableAllowances decimal.Decimal `json:"non_accountable_allowances,omitempty"`
	GrossPay                 decimal.Decimal `json:"gross_pay,omitempty"`
	NetPay                   decimal.Decimal `json:"net_pay,omitempty"`

	PayrollTaxes map[string]decimal.Decimal `json:"payroll_taxes"`

	NoOfExemptions      int    `json:"no_of_exemption_including_self,omitempty"`
	NoOfDependentChild  int    `json:"no_of_dependent_child,omitempty"`
	NoOfStudentLoans    int    `json:"no_of_student_default_loan,omitempty"`
	SupportSecondFamily bool   `json:"support_second_family,omitempty"`
	ArrearsGreater12Wk  bool   `json:"arrears_greater_than_12_weeks,omitempty"`
	IsBlind             bool   `json:"is_blind,omitempty"`
	IsAge65OrOlder      bool   `json:"age_65_or_older,omitempty"`
	DebtType            string `json:"debt_type,omitempty"`

	// Dates use YYYY-MM-DD.
	StatementOfExemptionDate string `json:"statement_of_exemption_received_date,omitempty"`
	GarnishmentStartDate     string `json:"garn_start_date,omitempty"`
}

// OrderDTO is one garnishment order against the employee.
type OrderDTO struct {
	CaseID string `json:"case_id"`
	Type   string `json:"garnishment_type"`

	OrderedAmount decimal.Decimal `json:"ordered_amount,omitempty"`
	ArrearAmount  decimal.Decimal `json:"arrear_amount,omitempty"`

	CurrentChildSupport   decimal.Decimal `json:"current_child_support,omitempty"`
	PastDueChildSupport   decimal.Decimal `json:"past_due_child_support,omitempty"`
	CurrentMedicalSupport decimal.Decimal `json:"current_medical_support,omitempty"`
	PastDueMedicalSupport decimal.Decimal `json:"past_due_medical_support,omitempty"`
	CurrentSpousalSupport decimal.Decimal `json:"current_spousal_support,omitempty"`
	PastDueSpousalSupport decimal.Decimal `json:"past_due_spousal_support,omitempty"`
	CourtFees             decimal.Decimal `json:"court_fees,omitempty"`
	HousePayment          decimal.Decimal `json:"house_payment,omitempty"`
	InsurancePayment      decimal.Decimal `json:"insurance_payment,omitempty"`

	BankruptcyAmount decimal.Decimal `json:"bankruptcy_amount,omitempty"`
	FTBType          string          `json:"ftb_type,omitempty"`
}

// CaseDTO pairs one payroll record with its garnishment orders.
type CaseDTO struct {
	Payroll PayrollDTO `json:"payroll"`
	Orders  []OrderDTO `json:"garnishment_orders"`
}

// BatchRequest is a batch calculation request.
type BatchRequest struct {
	BatchID  string    `json:"batch_id,omitempty"`
	ClientID string    `json:"client_id,omitempty"`
	Cases    []CaseDTO `json:"cases"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// CaseAmountDTO is the per-order breakdown inside a type result.
type CaseAmountDTO struct {
	CaseID            string          `json:"case_id,omitempty"`
	WithholdingAmount decimal.Decimal `json:"withholding_amount"`
	ArrearAmount      decimal.Decimal `json:"arrear_amount"`
}

// TypeResultDTO is one garnishment type's outcome.
type TypeResultDTO struct {
	Type   string `json:"garnishment_type"`
	Status string `json:"status"`

	WithholdingAmount decimal.Decimal `json:"withholding_amount"`
	Cases             []CaseAmountDTO `json:"cases,omitempty"`

	Basis string `json:"basis,omitempty"`
	Cap   string `json:"cap,omitempty"`

	AmountLeftForOtherGarnishment decimal.Decimal `json:"amount_left_for_other_garnishment,omitempty"`
	GarnishmentFee                decimal.Decimal `json:"garnishment_fee,omitempty"`
	FeeRule                       string          `json:"fee_rule,omitempty"`
	ErrorDetail                   string          `json:"error,omitempty"`
}

// CaseResultDTO is one employee's full outcome.
type CaseResultDTO struct {
	EmployeeID         string          `json:"ee_id"`
	DisposableEarnings decimal.Decimal `json:"disposable_earnings"`
	TwentyFivePctOfDE  decimal.Decimal `json:"twenty_five_percent_of_de"`
	TotalWithheld      decimal.Decimal `json:"total_withheld"`
	Results            []TypeResultDTO `json:"results"`
	Error              string          `json:"error,omitempty"`
}

// BatchResponse wraps a processed batch.
type BatchResponse struct {
	BatchID      string          `json:"batch_id"`
	RulesVersion int64           `json:"rules_version"`
	RecordCount  int             `json:"record_count"`
	ErrorCount   int             `json:"error_count"`
	Results      []CaseResultDTO `json:"results"`
}

// RuleSetInfoDTO describes the active rule snapshot.
type RuleSetInfoDTO struct {
	Version  int64  `json:"version"`
	LoadedAt string `json:"loaded_at"`
}

// FeePreviewDTO is the response of a fee rule lookup.
type FeePreviewDTO struct {
	State     string          `json:"state"`
	Type      string          `json:"garnishment_type"`
	PayPeriod string          `json:"pay_period"`
	Rule      string          `json:"rule,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	PayableBy string          `json:"payable_by,omitempty"`
	Found     bool            `json:"found"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toPayrollRecord(p PayrollDTO) *garnish.PayrollRecord {
	return &garnish.PayrollRecord{
		EmployeeID:   p.EmployeeID,
		ClientID:     p.ClientID,
		WorkState:    p.WorkState,
		HomeState:    p.HomeState,
		IssuingState: p.IssuingState,
		PayPeriod:    garnish.PayPeriod(p.PayPeriod),
		FilingStatus: garnish.FilingStatus(p.FilingStatus),

		Wages:                    p.Wages,
		CommissionAndBonus:       p.CommissionAndBonus,
		NonAccountableAllowances: p.NonAccountableAllowances,
		GrossPay:                 p.GrossPay,
		NetPay:                   p.NetPay,
		PayrollTaxes:             p.PayrollTaxes,

		NoOfExemptions:      p.NoOfExemptions,
		NoOfDependentChild:  p.NoOfDependentChild,
		NoOfStudentLoans:    p.NoOfStudentLoans,
		SupportSecondFamily: p.SupportSecondFamily,
		ArrearsGreater12Wk:  p.ArrearsGreater12Wk,
		IsBlind:             p.IsBlind,
		IsAge65OrOlder:      p.IsAge65OrOlder,
		DebtType:            garnish.DebtType(p.DebtType),

		StatementOfExemptionDate: parseDate(p.StatementOfExemptionDate),
		GarnishmentStartDate:     parseDate(p.GarnishmentStartDate),
	}
}

func toOrders(dtos []OrderDTO) []garnish.Order {
	orders := make([]garnish.Order, len(dtos))
	for i, o := range dtos {
		orders[i] = garnish.Order{
			CaseID: o.CaseID,
			Type:   garnish.GarnishmentType(o.Type),

			OrderedAmount: o.OrderedAmount,
			ArrearAmount:  o.ArrearAmount,

			CurrentChildSupport:   o.CurrentChildSupport,
			PastDueChildSupport:   o.PastDueChildSupport,
			CurrentMedicalSupport: o.CurrentMedicalSupport,
			PastDueMedicalSupport: o.PastDueMedicalSupport,
			CurrentSpousalSupport: o.CurrentSpousalSupport,
			PastDueSpousalSupport: o.PastDueSpousalSupport,
			CourtFees:             o.CourtFees,
			HousePayment:          o.HousePayment,
			InsurancePayment:      o.InsurancePayment,

			BankruptcyAmount: o.BankruptcyAmount,
			FTBType:          garnish.FTBType(o.FTBType),
		}
	}
	return orders
}

func toTypeResultDTO(tr garnish.TypeResult) TypeResultDTO {
	dto := TypeResultDTO{
		Type:   string(tr.Type),
		Status: string(tr.Status),

		WithholdingAmount: tr.WithholdingAmt,
		Basis:             tr.Basis,
		Cap:               tr.Cap,

		AmountLeftForOtherGarnishment: tr.AmountLeftForOtherGarn,
		GarnishmentFee:                tr.GarnishmentFee,
		FeeRule:                       tr.FeeRule,
		ErrorDetail:                   tr.ErrorDetail,
	}
	for _, c := range tr.Cases {
		dto.Cases = append(dto.Cases, CaseAmountDTO{
			CaseID:            c.CaseID,
			WithholdingAmount: c.WithholdingAmt,
			ArrearAmount:      c.ArrearAmt,
		})
	}
	return dto
}

func toCaseResultDTO(cr *garnish.CaseResult) CaseResultDTO {
	dto := CaseResultDTO{
		EmployeeID:         cr.EmployeeID,
		DisposableEarnings: cr.DisposableEarnings,
		TwentyFivePctOfDE:  cr.TwentyFivePctOfDE,
		TotalWithheld:      cr.TotalWithheld(),
	}
	for _, tr := range cr.Results {
		dto.Results = append(dto.Results, toTypeResultDTO(tr))
	}
	return dto
}
