/*
handlers.go - HTTP API handlers for the garnishment calculation engine

PURPOSE:
  Exposes the withholding calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Garnishment:
    POST   /api/garnishment/calculate       Run a batch calculation
    GET    /api/garnishment/results/{ee_id} Stored results for an employee
    GET    /api/garnishment/batches/{id}    Batch metadata
    GET    /api/garnishment/fees/preview    Fee rule lookup

  Rules:
    GET    /api/rules                       Active rule snapshot info
    POST   /api/rules                       Upload a new rule snapshot

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Cached rule set guarded by a RWMutex; uploads swap it atomically

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (allocator, fee engine, rule factory)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - batch.go: Concurrent batch processing
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garnishedge/garnish-engine/factory"
	"github.com/garnishedge/garnish-engine/garnish"
	"github.com/garnishedge/garnish-engine/store/sqlite"
)

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds dependencies for all API endpoints.
type Handler struct {
	Store *sqlite.Store

	mu           sync.RWMutex
	rules        *garnish.RuleSet
	rulesVersion int64
	rulesLoaded  time.Time
}

// NewHandler creates a handler backed by the given store. Call LoadRules
// before serving to hydrate the rule cache from the database.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// LoadRules reads the latest rule snapshot from the store into the cache.
func (h *Handler) LoadRules(ctx context.Context) error {
	rules, version, err := h.Store.LoadRuleSet(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.rules = rules
	h.rulesVersion = version
	h.rulesLoaded = time.Now()
	h.mu.Unlock()
	return nil
}

// SetRules installs a rule set directly, bypassing the store. Used at
// startup when seeding from a JSON file.
func (h *Handler) SetRules(rules *garnish.RuleSet, version int64) {
	h.mu.Lock()
	h.rules = rules
	h.rulesVersion = version
	h.rulesLoaded = time.Now()
	h.mu.Unlock()
}

func (h *Handler) activeRules() (*garnish.RuleSet, int64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.rules == nil {
		return nil, 0, false
	}
	return h.rules, h.rulesVersion, true
}

// =============================================================================
// GARNISHMENT ENDPOINTS
// =============================================================================

// CalculateBatch runs the withholding calculation for a batch of employee
// pay records and persists the results.
// POST /api/garnishment/calculate
func (h *Handler) CalculateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Cases) == 0 {
		writeError(w, http.StatusBadRequest, "cases must not be empty", nil)
		return
	}
	for i, c := range req.Cases {
		if c.Payroll.EmployeeID == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("cases[%d]: ee_id is required", i), nil)
			return
		}
		if c.Payroll.WorkState == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("cases[%d]: work_state is required", i), nil)
			return
		}
	}

	rules, version, ok := h.activeRules()
	if !ok {
		writeError(w, http.StatusInternalServerError, "no rule set loaded", nil)
		return
	}

	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}

	results, errCount := processBatch(garnish.NewPriorityAllocator(rules), req.Cases)

	batch := sqlite.BatchRecord{
		ID:           req.BatchID,
		ClientID:     req.ClientID,
		RecordCount:  len(req.Cases),
		ErrorCount:   errCount,
		RulesVersion: version,
	}
	stored := make([]garnish.CaseResult, 0, len(results))
	for _, br := range results {
		if br.result != nil {
			stored = append(stored, *br.result)
		}
	}
	if err := h.Store.SaveBatch(r.Context(), batch, stored); err != nil {
		log.Printf("batch %s: persist failed: %v", req.BatchID, err)
		writeError(w, http.StatusInternalServerError, "failed to persist batch", err)
		return
	}

	resp := BatchResponse{
		BatchID:      req.BatchID,
		RulesVersion: version,
		RecordCount:  len(req.Cases),
		ErrorCount:   errCount,
	}
	for _, br := range results {
		if br.err != nil {
			resp.Results = append(resp.Results, CaseResultDTO{
				EmployeeID: br.employeeID,
				Error:      br.err.Error(),
			})
			continue
		}
		resp.Results = append(resp.Results, toCaseResultDTO(br.result))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetEmployeeResults returns stored calculation results for an employee.
// GET /api/garnishment/results/{ee_id}?limit=N
func (h *Handler) GetEmployeeResults(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "ee_id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "ee_id is required", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	results, err := h.Store.ResultsForEmployee(r.Context(), employeeID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load results", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ee_id":   employeeID,
		"results": results,
	})
}

// GetBatch returns metadata for a stored batch.
// GET /api/garnishment/batches/{id}
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.Store.Batch(r.Context(), id)
	if err != nil {
		if garnish.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "batch not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load batch", err)
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

// FeePreview looks up the employer fee a state would attach to a withheld
// amount, without running a full calculation.
// GET /api/garnishment/fees/preview?state=&type=&pay_period=&withheld=
func (h *Handler) FeePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")
	gtype := q.Get("type")
	payPeriod := q.Get("pay_period")
	if state == "" || gtype == "" || payPeriod == "" {
		writeError(w, http.StatusBadRequest, "state, type and pay_period are required", nil)
		return
	}

	withheld := decimal.Zero
	if raw := q.Get("withheld"); raw != "" {
		var err error
		withheld, err = decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "withheld must be a decimal amount", err)
			return
		}
	}

	rules, _, ok := h.activeRules()
	if !ok {
		writeError(w, http.StatusInternalServerError, "no rule set loaded", nil)
		return
	}

	engine := garnish.FeeEngine{Rules: rules}
	out, found := engine.Apply(state, garnish.GarnishmentType(gtype), garnish.PayPeriod(payPeriod), withheld)

	writeJSON(w, http.StatusOK, FeePreviewDTO{
		State:     garnish.NormalizeState(state),
		Type:      gtype,
		PayPeriod: payPeriod,
		Rule:      out.Rule,
		Amount:    out.Amount,
		Note:      out.Note,
		PayableBy: out.PayableBy,
		Found:     found,
	})
}

// =============================================================================
// RULES ENDPOINTS
// =============================================================================

// GetRules returns the active rule snapshot metadata.
// GET /api/rules
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	_, version, ok := h.activeRules()
	if !ok {
		writeError(w, http.StatusNotFound, "no rule set loaded", nil)
		return
	}

	h.mu.RLock()
	loaded := h.rulesLoaded
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, RuleSetInfoDTO{
		Version:  version,
		LoadedAt: loaded.Format(time.RFC3339),
	})
}

// ExportRules returns the active rule tables as a JSON document in the
// same schema the upload endpoint accepts.
// GET /api/rules/export
func (h *Handler) ExportRules(w http.ResponseWriter, r *http.Request) {
	rules, _, ok := h.activeRules()
	if !ok {
		writeError(w, http.StatusNotFound, "no rule set loaded", nil)
		return
	}

	writeJSON(w, http.StatusOK, factory.NewRuleSetFactory().ToJSON(rules))
}

// UploadRules parses a rule set JSON document, persists it as a new
// snapshot, and swaps the in-memory cache.
// POST /api/rules
func (h *Handler) UploadRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	rules, err := factory.NewRuleSetFactory().ParseRuleSet(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule set", err)
		return
	}

	note := r.URL.Query().Get("note")
	version, err := h.Store.SaveRuleSet(r.Context(), rules, note)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist rule set", err)
		return
	}

	h.SetRules(rules, version)
	log.Printf("rules: snapshot v%d installed", version)

	writeJSON(w, http.StatusCreated, RuleSetInfoDTO{
		Version:  version,
		LoadedAt: time.Now().Format(time.RFC3339),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("writeJSON: encode failed: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
