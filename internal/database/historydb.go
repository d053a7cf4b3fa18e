// Package database provides SQLite-based storage for extraction run history.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// HistoryDB provides SQLite-based storage for extraction runs.
// It manages connection pooling and provides methods for saving and
// querying past runs.
//
// Design decision: We use a single database file for all runs rather than
// one file per lecture. This keeps the history command a single query and
// simplifies backup/restore operations.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "clickerscrape.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and runs are written one at a time,
	// so a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per extraction run, with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		lecture_url TEXT NOT NULL,
		profile TEXT,
		phase_reached TEXT,
		player_located INTEGER DEFAULT 0,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER DEFAULT 0,
		code_count INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_url ON runs(lecture_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Detections store every per-frame recognition for a run
	CREATE TABLE IF NOT EXISTS detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		code TEXT NOT NULL,
		timestamp_label TEXT,
		source_image TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_detections_run ON detections(run_id);
	CREATE INDEX IF NOT EXISTS idx_detections_code ON detections(code);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun saves a completed extraction run and its detections.
// Saving the same run twice replaces the earlier row and its detections.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.ExtractionReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
	INSERT INTO runs (run_id, lecture_url, profile, phase_reached, player_located, started_at, duration_ms, code_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		lecture_url = excluded.lecture_url,
		profile = excluded.profile,
		phase_reached = excluded.phase_reached,
		player_located = excluded.player_located,
		started_at = excluded.started_at,
		duration_ms = excluded.duration_ms,
		code_count = excluded.code_count,
		report_json = excluded.report_json
	`

	if _, err := tx.ExecContext(ctx, query,
		report.RunID,
		report.LectureURL,
		report.Profile,
		report.PhaseReached.String(),
		report.PlayerLocated,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Duration.Milliseconds(),
		len(report.Codes),
		string(reportJSON),
	); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM detections WHERE run_id = ?", report.RunID); err != nil {
		return fmt.Errorf("failed to clear detections: %w", err)
	}

	for _, d := range report.Detections {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO detections (run_id, code, timestamp_label, source_image) VALUES (?, ?, ?, ?)",
			report.RunID, d.CodeText, d.TimestampLabel, d.SourceImageRef,
		); err != nil {
			return fmt.Errorf("failed to save detection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunSummary contains summary information about a stored run.
// This is used for listing history without loading the full report.
type RunSummary struct {
	// RunID is the unique identifier of the run.
	RunID string

	// LectureURL is the viewer page that was scanned.
	LectureURL string

	// Profile is the viewer profile the run used.
	Profile string

	// PhaseReached is the last phase the run executed.
	PhaseReached string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the total wall-clock time of the run.
	Duration time.Duration

	// CodeCount is the number of distinct codes the run found.
	CodeCount int
}

// RecentRuns returns summaries of the most recent runs, newest first.
// A limit of zero or less returns all runs.
func (hdb *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT run_id, lecture_url, profile, phase_reached, started_at, duration_ms, code_count
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var s RunSummary
		var startedAt string
		var durationMS int64

		if err := rows.Scan(
			&s.RunID,
			&s.LectureURL,
			&s.Profile,
			&s.PhaseReached,
			&startedAt,
			&durationMS,
			&s.CodeCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetRun retrieves the full report for a run by its run ID.
// Returns nil without error when the run does not exist.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*model.ExtractionReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE run_id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, runID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.ExtractionReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// CodesForLecture returns the distinct codes ever recorded for a lecture URL,
// across all runs, sorted alphabetically.
func (hdb *HistoryDB) CodesForLecture(ctx context.Context, lectureURL string) ([]string, error) {
	query := `
	SELECT DISTINCT d.code
	FROM detections d
	JOIN runs r ON r.run_id = d.run_id
	WHERE r.lecture_url = ?
	ORDER BY d.code
	`

	rows, err := hdb.db.QueryContext(ctx, query, lectureURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
