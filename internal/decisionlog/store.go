// Package decisionlog persists enforcement runs and per-turn decisions in
// SQLite so recorded runs can be inspected, exported as fixtures and
// replayed bit-identically.
package decisionlog

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id             TEXT PRIMARY KEY,
	domain             TEXT NOT NULL,
	mode               TEXT NOT NULL,
	max_scale_attempts INTEGER NOT NULL,
	scale_factor       REAL NOT NULL,
	seed               INTEGER NOT NULL,
	start_state        TEXT,
	created_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	turn           INTEGER NOT NULL,
	state          TEXT,
	proposed       TEXT NOT NULL,
	effective      TEXT NOT NULL,
	state_norm     REAL,
	proposed_norm  REAL,
	effective_norm REAL,
	outcome        TEXT NOT NULL,
	audit_ok       INTEGER NOT NULL DEFAULT 1,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_run_turn ON decisions(run_id, turn);
`
// #endregion schema

// #region store-struct
// Store manages run and decision provenance in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for ad-hoc inspection queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region begin-run
// BeginRun assigns a run id and timestamp and inserts the run row.
func (s *Store) BeginRun(rec RunRecord) (RunRecord, error) {
	rec.RunID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, domain, mode, max_scale_attempts, scale_factor, seed, start_state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Domain, rec.Mode, rec.MaxScaleAttempts, rec.ScaleFactor,
		rec.Seed, nullIfEmpty(rec.StartState), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}
// #endregion begin-run

// #region log-decision
// LogDecision appends one decision row for a run.
func (s *Store) LogDecision(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	auditOK := 0
	if entry.AuditOK {
		auditOK = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO decisions (run_id, turn, state, proposed, effective, state_norm, proposed_norm, effective_norm, outcome, audit_ok, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID, entry.Turn, nullIfEmpty(entry.State), entry.Proposed, entry.Effective,
		nullIfNonFinite(entry.StateNorm), nullIfNonFinite(entry.ProposedNorm), nullIfNonFinite(entry.EffectiveNorm),
		entry.Outcome, auditOK, entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
// #endregion log-decision

// #region get-run
// GetRun retrieves a run row by id.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	var startState sql.NullString
	var createdStr string

	err := s.db.QueryRow(
		`SELECT run_id, domain, mode, max_scale_attempts, scale_factor, seed, start_state, created_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.Domain, &rec.Mode, &rec.MaxScaleAttempts,
		&rec.ScaleFactor, &rec.Seed, &startState, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	if startState.Valid {
		rec.StartState = startState.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, domain, mode, max_scale_attempts, scale_factor, seed, start_state, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startState sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.Domain, &rec.Mode, &rec.MaxScaleAttempts,
			&rec.ScaleFactor, &rec.Seed, &startState, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if startState.Valid {
			rec.StartState = startState.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-runs

// #region list-decisions
// ListDecisions returns all decision rows of a run in turn order.
func (s *Store) ListDecisions(runID string) ([]DecisionEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, turn, state, proposed, effective, state_norm, proposed_norm, effective_norm, outcome, audit_ok, created_at
		 FROM decisions WHERE run_id = ? ORDER BY turn ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var state sql.NullString
		var stateNorm, proposedNorm, effectiveNorm sql.NullFloat64
		var auditOK int
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Turn, &state, &e.Proposed, &e.Effective,
			&stateNorm, &proposedNorm, &effectiveNorm, &e.Outcome, &auditOK, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if state.Valid {
			e.State = state.String
		}
		e.StateNorm = nanIfNull(stateNorm)
		e.ProposedNorm = nanIfNull(proposedNorm)
		e.EffectiveNorm = nanIfNull(effectiveNorm)
		e.AuditOK = auditOK != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullIfNonFinite keeps NaN/Inf norms out of REAL columns; they read back
// as NaN.
func nullIfNonFinite(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func nanIfNull(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
// #endregion helpers
