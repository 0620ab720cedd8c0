package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
)

// SQLDB is the database interface used by stores.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the threshold used when none is configured.
const DefaultSlowQuery = 50 * time.Millisecond

type opKey struct{}

// WithOp labels the queries issued under ctx, e.g. "sessions.Get".
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

func opFrom(ctx context.Context, fallback string) string {
	if op, ok := ctx.Value(opKey{}).(string); ok && op != "" {
		return op
	}
	return fallback
}

// TimedDB wraps a *sql.DB to log slow queries and record them in a collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection
// POST: threshold <= 0 falls back to DefaultSlowQuery
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// RawDB returns the underlying *sql.DB.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

func (t *TimedDB) logQuery(ctx context.Context, method string, start time.Time) {
	d := time.Since(start)
	op := opFrom(ctx, method)
	durationMs := float64(d.Microseconds()) / 1000.0

	if d >= t.threshold {
		slog.WarnContext(ctx, "slow_query", "op", op, "duration_ms", durationMs)
	} else {
		slog.DebugContext(ctx, "query", "op", op, "duration_ms", durationMs)
	}
	t.collector.Record(perf.Entry{
		Kind:       perf.KindQuery,
		Path:       op,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}

// ExecContext wraps sql.DB.ExecContext with timing.
// POST: timing is recorded even when the statement fails
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.logQuery(ctx, "ExecContext", start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.logQuery(ctx, "QueryContext", start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.logQuery(ctx, "QueryRowContext", start)
	return row
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the database is reachable; used by the health check.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}
