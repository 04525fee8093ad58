/*
config.go - Threshold row resolution

PURPOSE:
  Several garnishment types share the same lookup shape: find the single
  best threshold row for a state and pay period, honoring optional
  discriminators and effective dates. One resolver serves them all so the
  tie-break rules cannot drift apart between calculators.

RESOLUTION RULES:
  1. State and pay period must match, case-insensitively.
  2. An empty row discriminator is a wildcard; a set one must equal the
     case's value.
  3. A dated row applies only when its date is on or before the case's
     garnishment start date. Dateless rows always apply.
  4. Among eligible rows the latest effective date wins; ties break to the
     row pinning down the most discriminators. Dateless rows rank below
     any dated row.
  5. No eligible row is ConfigNotFoundError, never a zero result.
*/
package garnish

import (
	"strings"
	"time"
)

// ConfigQuery carries the case attributes a threshold lookup matches on.
type ConfigQuery struct {
	Type      GarnishmentType
	State     string
	PayPeriod PayPeriod

	DebtType      DebtType
	HomeState     string
	FTBType       FTBType
	GarnStartDate time.Time
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func rowEligible(row *ConfigRow, q *ConfigQuery) bool {
	if !equalFold(row.State, NormalizeState(q.State)) {
		return false
	}
	if NormalizePayPeriod(row.PayPeriod) != NormalizePayPeriod(q.PayPeriod) {
		return false
	}
	if row.DebtType != "" && !equalFold(string(row.DebtType), string(q.DebtType)) {
		return false
	}
	if row.HomeState != "" && !equalFold(row.HomeState, NormalizeState(q.HomeState)) {
		return false
	}
	if row.FTBType != "" && !equalFold(string(row.FTBType), string(q.FTBType)) {
		return false
	}
	if !row.GarnStartDate.IsZero() {
		if q.GarnStartDate.IsZero() || row.GarnStartDate.After(q.GarnStartDate) {
			return false
		}
	}
	return true
}

// betterRow reports whether candidate should replace current as the winner.
func betterRow(candidate, current *ConfigRow) bool {
	switch {
	case candidate.GarnStartDate.After(current.GarnStartDate):
		return true
	case current.GarnStartDate.After(candidate.GarnStartDate):
		return false
	}
	return candidate.specificity() > current.specificity()
}

// ResolveConfig finds the best-matching threshold row for the query.
func (rs *RuleSet) ResolveConfig(q ConfigQuery) (*ConfigRow, error) {
	rows := rs.Thresholds[q.Type]
	var winner *ConfigRow
	for i := range rows {
		row := &rows[i]
		if !rowEligible(row, &q) {
			continue
		}
		if winner == nil || betterRow(row, winner) {
			winner = row
		}
	}
	if winner == nil {
		return nil, &ConfigNotFoundError{
			Table: string(q.Type) + " thresholds",
			State: NormalizeState(q.State), PayPeriod: q.PayPeriod,
		}
	}
	out := *winner
	return &out, nil
}
