package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnishedge/garnish-engine/api"
	"github.com/garnishedge/garnish-engine/factory"
	"github.com/garnishedge/garnish-engine/garnish"
	"github.com/garnishedge/garnish-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// testRules builds a rule set with Delaware child support at a 50% limit
// and a Nevada flat fee row.
func testRules() *garnish.RuleSet {
	st := garnish.NormalizeState("delaware")
	rs := &garnish.RuleSet{
		Thresholds:       map[garnish.GarnishmentType][]garnish.ConfigRow{},
		WithholdingRules: map[string]garnish.WithholdingRule{},
		StateLevy:        map[string]garnish.StateLevyRow{},
		DeductionKeys: map[string][]string{
			st: {"federal income tax", "social security tax", "medicare tax"},
		},
		SupportPriorities: map[string][]garnish.DeductionType{},
	}
	rs.WithholdingRules[st] = garnish.WithholdingRule{
		State: st, RuleNumber: 1, AllocationMethod: garnish.AllocateProrate,
	}
	rs.WithholdingLimits = append(rs.WithholdingLimits, garnish.WithholdingLimitRow{
		State:                st,
		RuleNumber:           1,
		SupportsSecondFamily: "no",
		ArrearsGreater12Wk:   "no",
		WithholdingLimit:     decimal.NewFromInt(50),
	})
	rs.Fees = append(rs.Fees, garnish.FeeRule{
		State:     garnish.NormalizeState("nevada"),
		Type:      garnish.TypeChildSupport,
		PayPeriod: garnish.PayWeekly,
		Rule:      "Rule_1",
		Amount:    d(3),
		PayableBy: "employer",
	})
	return rs
}

// newTestRouter wires a handler over an in-memory store with testRules
// installed as snapshot v1.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := api.NewHandler(store)
	h.SetRules(testRules(), 1)
	return api.NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func childSupportBatch() api.BatchRequest {
	return api.BatchRequest{
		BatchID:  "batch-1",
		ClientID: "client-1",
		Cases: []api.CaseDTO{
			{
				Payroll: api.PayrollDTO{
					EmployeeID: "emp-1",
					WorkState:  "delaware",
					PayPeriod:  "weekly",
					Wages:      d(1200),
					PayrollTaxes: map[string]decimal.Decimal{
						"federal income tax": d(200),
					},
				},
				Orders: []api.OrderDTO{
					{
						CaseID:        "case-1",
						Type:          "child_support",
						OrderedAmount: d(300),
					},
				},
			},
		},
	}
}

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculateBatch_ChildSupport_RoundTrip(t *testing.T) {
	router := newTestRouter(t)

	// GIVEN a Delaware weekly employee with DE 1000 and one $300 order
	req := childSupportBatch()

	// WHEN the batch is calculated
	rec := doJSON(t, router, http.MethodPost, "/api/garnishment/calculate", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.BatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	// THEN the full ordered amount is withheld under the 50% limit
	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, int64(1), resp.RulesVersion)
	assert.Equal(t, 1, resp.RecordCount)
	assert.Equal(t, 0, resp.ErrorCount)
	require.Len(t, resp.Results, 1)

	cr := resp.Results[0]
	assert.Equal(t, "emp-1", cr.EmployeeID)
	assert.True(t, cr.DisposableEarnings.Equal(d(1000)), "DE = %s", cr.DisposableEarnings)
	assert.True(t, cr.TwentyFivePctOfDE.Equal(d(250)))
	require.Len(t, cr.Results, 1)
	assert.Equal(t, "child_support", cr.Results[0].Type)
	assert.Equal(t, "completed", cr.Results[0].Status)
	assert.True(t, cr.Results[0].WithholdingAmount.Equal(d(300)))
}

func TestCalculateBatch_PersistsResults(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/garnishment/calculate", childSupportBatch())

	// WHEN the employee's stored results are fetched
	rec := doJSON(t, router, http.MethodGet, "/api/garnishment/results/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		EmployeeID string                `json:"ee_id"`
		Results    []sqlite.StoredResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	// THEN the persisted row matches the calculation
	assert.Equal(t, "emp-1", resp.EmployeeID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "batch-1", resp.Results[0].BatchID)
	assert.Equal(t, garnish.TypeChildSupport, resp.Results[0].Type)
	assert.Equal(t, garnish.StatusCompleted, resp.Results[0].Status)
}

func TestCalculateBatch_BatchMetadata(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/garnishment/calculate", childSupportBatch())

	rec := doJSON(t, router, http.MethodGet, "/api/garnishment/batches/batch-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch sqlite.BatchRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&batch))
	assert.Equal(t, "batch-1", batch.ID)
	assert.Equal(t, "client-1", batch.ClientID)
	assert.Equal(t, 1, batch.RecordCount)
	assert.Equal(t, int64(1), batch.RulesVersion)
}

func TestCalculateBatch_UnknownBatch_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/garnishment/batches/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculateBatch_Validation(t *testing.T) {
	router := newTestRouter(t)

	// Empty cases
	rec := doJSON(t, router, http.MethodPost, "/api/garnishment/calculate", api.BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing work state
	req := childSupportBatch()
	req.Cases[0].Payroll.WorkState = ""
	rec = doJSON(t, router, http.MethodPost, "/api/garnishment/calculate", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateBatch_CaseErrorDoesNotFailBatch(t *testing.T) {
	router := newTestRouter(t)

	// GIVEN one good case and one with no orders
	req := childSupportBatch()
	bad := req.Cases[0]
	bad.Payroll.EmployeeID = "emp-2"
	bad.Orders = nil
	req.Cases = append(req.Cases, bad)

	rec := doJSON(t, router, http.MethodPost, "/api/garnishment/calculate", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.BatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	// THEN the bad case carries its error and the good one its result
	assert.Equal(t, 1, resp.ErrorCount)
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, "emp-2", resp.Results[1].EmployeeID)
	assert.NotEmpty(t, resp.Results[1].Error)
}

// =============================================================================
// RULES
// =============================================================================

func TestUploadRules_SwapsSnapshot(t *testing.T) {
	router := newTestRouter(t)

	// GIVEN a rule set document
	doc := factory.NewRuleSetFactory().ToJSON(testRules())

	// WHEN it is uploaded
	rec := doJSON(t, router, http.MethodPost, "/api/rules", doc)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var info api.RuleSetInfoDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, int64(1), info.Version)

	// THEN the active snapshot reports the new version
	rec = doJSON(t, router, http.MethodGet, "/api/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, int64(1), info.Version)
}

func TestExportRules_RoundTrips(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/rules/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc factory.RuleSetJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))

	// The exported document parses back into an equivalent rule set
	restored, err := factory.NewRuleSetFactory().FromJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.WithholdingRules["delaware"].RuleNumber)
	require.Len(t, restored.Fees, 1)
	assert.Equal(t, "Rule_1", restored.Fees[0].Rule)
}

func TestUploadRules_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// FEE PREVIEW
// =============================================================================

func TestFeePreview_FlatRule(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet,
		"/api/garnishment/fees/preview?state=nevada&type=child_support&pay_period=weekly&withheld=300", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fee api.FeePreviewDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fee))
	assert.True(t, fee.Found)
	assert.Equal(t, "Rule_1", fee.Rule)
	assert.True(t, fee.Amount.Equal(d(3)))
	assert.Equal(t, "employer", fee.PayableBy)
}

func TestFeePreview_NoRow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet,
		"/api/garnishment/fees/preview?state=ohio&type=creditor_debt&pay_period=weekly&withheld=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fee api.FeePreviewDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fee))
	assert.False(t, fee.Found)
}

func TestFeePreview_MissingParams(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/garnishment/fees/preview?state=nevada", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
