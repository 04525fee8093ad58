/*
ftb.go - California franchise tax board withholding

PURPOSE:
  FTB orders come in several flavors. Earnings withholding orders for
  taxes (state tax levy, EWOT) use the general two-threshold formula;
  court-ordered debt and vehicle registration collections use the
  graduated three-band formula. The threshold row is discriminated by
  ftb_type in the config table.
*/
package garnish

import (
	"github.com/shopspring/decimal"
)

type FranchiseTaxBoardCalculator struct {
	Rules *RuleSet
}

func (c *FranchiseTaxBoardCalculator) Type() GarnishmentType { return TypeFranchiseTaxBoard }

func (c *FranchiseTaxBoardCalculator) Compute(rec *PayrollRecord, orders []Order) (*TypeResult, error) {
	ftbType := FTBStateTaxLevy
	if len(orders) > 0 && orders[0].FTBType != "" {
		ftbType = orders[0].FTBType
	}

	de, err := DisposableEarnings(rec, c.Rules)
	if err != nil {
		return nil, err
	}

	row, err := c.Rules.ResolveConfig(ConfigQuery{
		Type:          TypeFranchiseTaxBoard,
		State:         rec.WorkState,
		PayPeriod:     rec.PayPeriod,
		FTBType:       ftbType,
		DebtType:      rec.DebtType,
		GarnStartDate: rec.GarnishmentStartDate,
	})
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	switch ftbType {
	case FTBStateTaxLevy, FTBEWOT:
		eval = EvalGeneralDebt(de, row)
	default:
		eval = EvalGraduated(de, row)
	}

	res := &TypeResult{
		Type:               TypeFranchiseTaxBoard,
		Status:             StatusCompleted,
		WithholdingAmt:     RoundCents(FloorZero(eval.WithholdingAmt)),
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
