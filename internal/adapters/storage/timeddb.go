package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gamagourmet/internal/adapters/http/perf"
)

// SQLDB is the database interface every store is built against.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the slow-query warning threshold when
// GAMA_SLOW_QUERY_MS is not set.
const DefaultSlowQueryMs = 50

var (
	slowQueryMs   int64
	slowQueryOnce sync.Once
)

func slowQueryThreshold() float64 {
	slowQueryOnce.Do(func() {
		ms := DefaultSlowQueryMs
		if v := os.Getenv("GAMA_SLOW_QUERY_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				ms = n
			}
		}
		atomic.StoreInt64(&slowQueryMs, int64(ms))
	})
	return float64(atomic.LoadInt64(&slowQueryMs))
}

// TimedDB wraps a *sql.DB so every query is timed: slow ones are logged
// as warnings and all of them feed the perf collector when one is set.
// It satisfies SQLDB, so stores take it interchangeably with *sql.DB.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation. collector may be nil,
// in which case timings are only logged.
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	return &TimedDB{
		db:        db,
		collector: collector,
		threshold: slowQueryThreshold(),
	}
}

// RawDB returns the wrapped *sql.DB for pool configuration and shutdown.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// observe records one operation's duration. It runs on every query,
// success or failure, so error paths stay visible in the stats.
func (t *TimedDB) observe(op string, start time.Time) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if elapsed >= t.threshold {
		slog.Warn("slow_query", "op", op, "duration_ms", elapsed)
	} else {
		slog.Debug("query", "op", op, "duration_ms", elapsed)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       op,
			DurationMs: elapsed,
			Timestamp:  start,
		})
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe("ExecContext", start)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe("QueryContext", start)
	return rows, err
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe("QueryRowContext", start)
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BeginTx", start)
	return tx, err
}
