// Package runlog records batch-run history in a local sqlite database so
// past exports can be inspected after the fact.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Register the pure-Go sqlite driver.
	_ "modernc.org/sqlite"
)

// Day statuses stored per processed day.
const (
	DayStatusOK     = "ok"
	DayStatusFailed = "failed"
)

// Run is one orchestrator run over a date window.
type Run struct {
	ID            string
	StartDay      string
	EndDay        string
	StartedAt     time.Time
	FinishedAt    time.Time
	DaysSucceeded int
	DaysFailed    int
	AggregatePath string
}

// DayResult is the outcome for one calendar day within a run.
type DayResult struct {
	Day        string
	Status     string
	CSVPath    string
	ReportPath string
	Error      string
}

// Store wraps the sqlite connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the run-history database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create runlog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open runlog database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect runlog database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure runlog database: %w", err)
	}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runlog schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		start_day TEXT NOT NULL,
		end_day TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		days_succeeded INTEGER NOT NULL DEFAULT 0,
		days_failed INTEGER NOT NULL DEFAULT 0,
		aggregate_path TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS run_days (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		day TEXT NOT NULL,
		status TEXT NOT NULL,
		csv_path TEXT NOT NULL DEFAULT '',
		report_path TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_run_days_run ON run_days(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// SaveRun stores a completed run with its per-day outcomes in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, days []DayResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin runlog transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, start_day, end_day, started_at, finished_at, days_succeeded, days_failed, aggregate_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartDay, run.EndDay,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.DaysSucceeded, run.DaysFailed, run.AggregatePath,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, day := range days {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_days (run_id, day, status, csv_path, report_path, error)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, day.Day, day.Status, day.CSVPath, day.ReportPath, day.Error,
		)
		if err != nil {
			return fmt.Errorf("insert run day: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit runlog transaction: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_day, end_day, started_at, finished_at, days_succeeded, days_failed, aggregate_path
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.StartDay, &r.EndDay, &started, &finished,
			&r.DaysSucceeded, &r.DaysFailed, &r.AggregatePath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DayResults returns the per-day outcomes of one run, in insert order.
func (s *Store) DayResults(ctx context.Context, runID string) ([]DayResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, status, csv_path, report_path, error
		 FROM run_days WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run days: %w", err)
	}
	defer rows.Close()

	var days []DayResult
	for rows.Next() {
		var d DayResult
		if err := rows.Scan(&d.Day, &d.Status, &d.CSVPath, &d.ReportPath, &d.Error); err != nil {
			return nil, fmt.Errorf("scan run day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Close checkpoints and closes the database.
func (s *Store) Close() error {
	_, _ = s.db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}
