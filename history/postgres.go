package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/logging"
)

// runHistorySchema creates the run_history table. Idempotent.
const runHistorySchema = `
CREATE TABLE IF NOT EXISTS run_history (
	run_id      TEXT PRIMARY KEY,
	task_name   TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	status      TEXT NOT NULL,
	output      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	tool_count  INTEGER NOT NULL DEFAULT 0
)`

const insertRunQuery = `
INSERT INTO run_history (run_id, task_name, strategy, status, output, error, started_at, finished_at, tool_count)
VALUES (:run_id, :task_name, :strategy, :status, :output, :error, :started_at, :finished_at, :tool_count)`

// PostgresStore persists run records to postgres. Writes are synchronous:
// the orchestrator already guarantees that a slow or failing write can
// never change a run's status, so queueing buys nothing here.
type PostgresStore struct {
	db     *sqlx.DB
	logger logging.Logger
}

// PostgresOptions holds overrides passed to NewPostgresStore.
type PostgresOptions struct {
	// MaxOpenConns bounds the connection pool. Defaults to 4.
	MaxOpenConns int
	// Logger receives store records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewPostgresStore connects to postgres with the given DSN and ensures the
// run_history table exists.
func NewPostgresStore(dsn string, optFns ...func(o *PostgresOptions)) (*PostgresStore, error) {
	opts := PostgresOptions{
		MaxOpenConns: 4,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to history database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)

	s := &PostgresStore{db: db, logger: opts.Logger}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewPostgresStoreFromDB wraps an existing connection. The caller keeps
// ownership of the connection's lifecycle; no schema management happens.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "postgres"), logger: logging.NoOpLogger{}}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, runHistorySchema); err != nil {
		return fmt.Errorf("ensure run_history schema: %w", err)
	}
	return nil
}

// SaveRun implements core.HistoryStore.
func (s *PostgresStore) SaveRun(ctx context.Context, rec core.RunRecord) error {
	if _, err := s.db.NamedExecContext(ctx, insertRunQuery, rec); err != nil {
		s.logger.Error("history.postgres.save_failed", "run_id", rec.RunID, "error", err.Error())
		return fmt.Errorf("save run %s: %w", rec.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit records ordered by finish time, newest
// first.
func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	var out []core.RunRecord
	err := s.db.SelectContext(ctx, &out,
		`SELECT run_id, task_name, strategy, status, output, error, started_at, finished_at, tool_count
		 FROM run_history ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
