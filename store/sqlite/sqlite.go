/*
Package sqlite provides SQLite-backed persistence for rule snapshots and
calculation results.

PURPOSE:
  Two concerns live here: versioned rule set snapshots (the legal
  parameters calculators read) and an append-only audit trail of every
  withholding calculation the engine produced.

KEY TABLES:
  rule_snapshots:      Versioned JSON rule sets; the latest version wins
  batches:             One row per batch calculation run
  calculation_results: One row per employee per garnishment type

APPEND-ONLY ENFORCEMENT:
  calculation_results is never updated or deleted. A recalculation writes
  new rows under a new batch id; the audit trail stays intact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/garnish.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  rules, err := store.LoadRuleSet(ctx)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - factory/ruleset.go: the JSON codec used for snapshots
  - api/handlers.go: the HTTP surface writing results here
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/garnishedge/garnish-engine/factory"
	"github.com/garnishedge/garnish-engine/garnish"
)

// Store persists rule snapshots and calculation results in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise open its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Versioned rule set snapshots
	CREATE TABLE IF NOT EXISTS rule_snapshots (
		version INTEGER PRIMARY KEY AUTOINCREMENT,
		rules_json TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	-- Batch calculation runs
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		client_id TEXT,
		record_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL DEFAULT 0,
		rules_version INTEGER,
		created_at TEXT NOT NULL
	);

	-- Per-employee, per-type results (append-only audit trail)
	CREATE TABLE IF NOT EXISTS calculation_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		garnishment_type TEXT NOT NULL,
		status TEXT NOT NULL,
		withholding_amount TEXT NOT NULL,
		disposable_earnings TEXT NOT NULL,
		garnishment_fee TEXT,
		detail_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_batch
		ON calculation_results(batch_id);
	CREATE INDEX IF NOT EXISTS idx_results_employee
		ON calculation_results(employee_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_results_type
		ON calculation_results(garnishment_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RULE SNAPSHOTS
// =============================================================================

// SaveRuleSet stores a new rule set snapshot and returns its version.
func (s *Store) SaveRuleSet(ctx context.Context, rules *garnish.RuleSet, note string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := factory.NewRuleSetFactory()
	data, err := json.Marshal(f.ToJSON(rules))
	if err != nil {
		return 0, fmt.Errorf("failed to encode rule set: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rule_snapshots (rules_json, note, created_at) VALUES (?, ?, ?)`,
		string(data), note, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to save rule set: %w", err)
	}
	return res.LastInsertId()
}

// LoadRuleSet loads the latest rule set snapshot.
func (s *Store) LoadRuleSet(ctx context.Context) (*garnish.RuleSet, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		version int64
		data    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, rules_json FROM rule_snapshots ORDER BY version DESC LIMIT 1`).
		Scan(&version, &data)
	if err == sql.ErrNoRows {
		return nil, 0, &garnish.ConfigNotFoundError{Table: "rule_snapshots"}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load rule set: %w", err)
	}

	rules, err := factory.NewRuleSetFactory().ParseRuleSet([]byte(data))
	if err != nil {
		return nil, 0, fmt.Errorf("stored rule set v%d is invalid: %w", version, err)
	}
	return rules, version, nil
}

// =============================================================================
// CALCULATION RESULTS
// =============================================================================

// BatchRecord summarizes one batch run.
type BatchRecord struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id,omitempty"`
	RecordCount  int       `json:"record_count"`
	ErrorCount   int       `json:"error_count"`
	RulesVersion int64     `json:"rules_version"`
	CreatedAt    time.Time `json:"created_at"`
}

// SaveBatch records a batch run and its per-employee results in one
// transaction.
func (s *Store) SaveBatch(ctx context.Context, batch BatchRecord, results []garnish.CaseResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, client_id, record_count, error_count, rules_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.ClientID, batch.RecordCount, batch.ErrorCount, batch.RulesVersion, now)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO calculation_results
		 (batch_id, employee_id, garnishment_type, status, withholding_amount,
		  disposable_earnings, garnishment_fee, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, cr := range results {
		for _, tr := range cr.Results {
			detail, err := json.Marshal(tr)
			if err != nil {
				return fmt.Errorf("failed to encode result detail: %w", err)
			}
			_, err = stmt.ExecContext(ctx,
				batch.ID, cr.EmployeeID, string(tr.Type), string(tr.Status),
				tr.WithholdingAmt.String(), cr.DisposableEarnings.String(),
				tr.GarnishmentFee.String(), string(detail), now)
			if err != nil {
				return fmt.Errorf("failed to save result for %s: %w", cr.EmployeeID, err)
			}
		}
	}

	return tx.Commit()
}

// StoredResult is one persisted per-type outcome.
type StoredResult struct {
	BatchID            string                    `json:"batch_id"`
	EmployeeID         string                    `json:"ee_id"`
	Type               garnish.GarnishmentType   `json:"garnishment_type"`
	Status             garnish.CalculationStatus `json:"status"`
	WithholdingAmount  string                    `json:"withholding_amount"`
	DisposableEarnings string                    `json:"disposable_earnings"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// ResultsForEmployee returns the employee's results, newest first.
func (s *Store) ResultsForEmployee(ctx context.Context, employeeID string, limit int) ([]StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, employee_id, garnishment_type, status,
		        withholding_amount, disposable_earnings, created_at
		 FROM calculation_results
		 WHERE employee_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var (
			r       StoredResult
			gtype   string
			status  string
			created string
		)
		if err := rows.Scan(&r.BatchID, &r.EmployeeID, &gtype, &status,
			&r.WithholdingAmount, &r.DisposableEarnings, &created); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Type = garnish.GarnishmentType(gtype)
		r.Status = garnish.CalculationStatus(status)
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Batch returns one batch record.
func (s *Store) Batch(ctx context.Context, id string) (*BatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		b       BatchRecord
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, client_id, record_count, error_count, rules_version, created_at
		 FROM batches WHERE id = ?`, id).
		Scan(&b.ID, &b.ClientID, &b.RecordCount, &b.ErrorCount, &b.RulesVersion, &created)
	if err == sql.ErrNoRows {
		return nil, &garnish.ConfigNotFoundError{Table: "batches", Detail: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		b.CreatedAt = ts
	}
	return &b, nil
}
