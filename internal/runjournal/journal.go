package runjournal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Summary is one completed run.
type Summary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	TotalShows  int
	CacheHits   int
	RemoteCalls int
	AiringFound int
	Failures    int
}

// Duration returns the run's wall-clock duration.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Journal persists run summaries in SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db, path: path}
	if err := journal.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    total_shows INTEGER NOT NULL,
    cache_hits INTEGER NOT NULL,
    remote_calls INTEGER NOT NULL,
    airing_found INTEGER NOT NULL,
    failures INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`

	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init journal schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record inserts a run summary.
func (j *Journal) Record(ctx context.Context, summary Summary) error {
	const insert = `
INSERT INTO runs (run_id, started_at, finished_at, total_shows, cache_hits, remote_calls, airing_found, failures)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := j.db.ExecContext(ctx, insert,
		summary.RunID,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.TotalShows,
		summary.CacheHits,
		summary.RemoteCalls,
		summary.AiringFound,
		summary.Failures,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", summary.RunID, err)
	}
	return nil
}

// Recent returns up to limit summaries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
SELECT run_id, started_at, finished_at, total_shows, cache_hits, remote_calls, airing_found, failures
FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary    Summary
			startedAt  string
			finishedAt string
		)
		if err := rows.Scan(
			&summary.RunID,
			&startedAt,
			&finishedAt,
			&summary.TotalShows,
			&summary.CacheHits,
			&summary.RemoteCalls,
			&summary.AiringFound,
			&summary.Failures,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if summary.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		if summary.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return summaries, nil
}
