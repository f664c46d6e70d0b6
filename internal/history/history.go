// Package history keeps a per-run record of every package outcome in a
// local sqlite database, so `postinstall status --history` can answer what
// a past run actually did after the terminal output is gone.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantmind-br/postinstall/internal/core"
	_ "modernc.org/sqlite"
)

// DB wraps the history database with separate read/write pools.
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// Run is one orchestrator invocation.
type Run struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Mode       string    `json:"mode"`
	DryRun     bool      `json:"dry_run"`
	Failures   int       `json:"failures"`
}

// Event is one package outcome within a run.
type Event struct {
	RunID      int64  `json:"run_id"`
	Step       string `json:"step"`
	Backend    string `json:"backend"`
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

// New opens (and if needed creates) the history database.
func New(ctx context.Context, dbPath string) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: single connection, sqlite allows one writer.
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)

	db := &DB{write: write, read: read, path: dbPath}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes both connection pools.
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    mode TEXT NOT NULL,
    dry_run INTEGER NOT NULL DEFAULT 0,
    failures INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS package_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id),
    step TEXT NOT NULL,
    backend TEXT NOT NULL,
    identifier TEXT NOT NULL,
    status TEXT NOT NULL,
    reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_events_run ON package_events(run_id);
CREATE INDEX IF NOT EXISTS idx_events_status ON package_events(status);
	`

	if _, err := db.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// StartRun inserts a new run row and returns its ID.
func (db *DB) StartRun(ctx context.Context, mode core.Mode, dryRun bool) (int64, error) {
	res, err := db.write.ExecContext(ctx,
		`INSERT INTO runs (started_at, mode, dry_run) VALUES (?, ?, ?)`,
		time.Now().UTC(), string(mode), dryRun)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun stamps a run's end time and failure count.
func (db *DB) FinishRun(ctx context.Context, runID int64, failures int) error {
	_, err := db.write.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, failures = ? WHERE id = ?`,
		time.Now().UTC(), failures, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordOutcome stores one package outcome.
func (db *DB) RecordOutcome(ctx context.Context, runID int64, step string, o core.Outcome) error {
	_, err := db.write.ExecContext(ctx,
		`INSERT INTO package_events (run_id, step, backend, identifier, status, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, step, string(o.Backend), o.Identifier, string(o.Status), o.Reason)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// RecentRuns lists the most recent runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.read.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, started_at), mode, dry_run, failures
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Mode, &r.DryRun, &r.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunEvents lists every package event of one run in insertion order.
func (db *DB) RunEvents(ctx context.Context, runID int64) ([]Event, error) {
	rows, err := db.read.QueryContext(ctx,
		`SELECT run_id, step, backend, identifier, status, COALESCE(reason, '')
		 FROM package_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.RunID, &e.Step, &e.Backend, &e.Identifier, &e.Status, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
