package storage

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gamagourmet/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A pooled second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	db.Exec("CREATE TABLE ingredientes (id TEXT PRIMARY KEY, name TEXT)")
	return db
}

func TestTimedDBRecordsEachOperation(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO ingredientes (id, name) VALUES (?, ?)", "ing-1", "merken"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM ingredientes")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var name string
	if err := tdb.QueryRowContext(ctx, "SELECT name FROM ingredientes WHERE id = ?", "ing-1").Scan(&name); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if name != "merken" {
		t.Errorf("name = %q, want merken", name)
	}

	if collector.TotalRecorded() != 3 {
		t.Errorf("TotalRecorded = %d, want 3", collector.TotalRecorded())
	}
}

func TestTimedDBBeginTx(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)

	tx, err := tdb.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO ingredientes (id, name) VALUES (?, ?)", "ing-1", "cilantro"); err != nil {
		t.Fatalf("tx exec: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if collector.TotalRecorded() < 1 {
		t.Errorf("TotalRecorded = %d, want >= 1", collector.TotalRecorded())
	}
}

func TestTimedDBNilCollector(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	tdb := NewTimedDB(db, nil)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO ingredientes (id, name) VALUES (?, ?)", "ing-1", "sal"); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}

// Errors must pass through unchanged and still be timed; a wrapper that
// swallowed errors would corrupt data silently.
func TestTimedDBErrorPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO no_such_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	if _, err := tdb.QueryContext(ctx, "SELECT * FROM no_such_table"); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	var name string
	if err := tdb.QueryRowContext(ctx, "SELECT name FROM ingredientes WHERE id = ?", "missing").Scan(&name); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if collector.TotalRecorded() != 3 {
		t.Errorf("TotalRecorded = %d, want 3 (errors must be timed too)", collector.TotalRecorded())
	}
}

func TestTimedDBCancelledContext(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO ingredientes (id, name) VALUES (?, ?)", "ing-1", "ajo"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1 (must record on cancelled ctx)", collector.TotalRecorded())
	}
}

func TestTimedDBResultPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	tdb := NewTimedDB(db, perf.NewCollector(100))

	result, err := tdb.ExecContext(context.Background(), "INSERT INTO ingredientes (id, name) VALUES (?, ?)", "ing-1", "oregano")
	if err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		t.Fatalf("RowsAffected: %v", err)
	}
	if affected != 1 {
		t.Errorf("RowsAffected = %d, want 1", affected)
	}
}

func TestTimedDBRawDB(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	tdb := NewTimedDB(db, nil)

	if tdb.RawDB() != db {
		t.Error("RawDB() should return the original *sql.DB")
	}
}

func TestTimedDBConcurrentOps(t *testing.T) {
	db := openTimedTestDB(t)
	defer db.Close()
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(db, collector)
	ctx := context.Background()

	tdb.ExecContext(ctx, "INSERT INTO ingredientes (id, name) VALUES (?, ?)", "seed", "comino")

	done := make(chan struct{})
	var wg sync.WaitGroup
	for _, op := range []func(){
		func() {
			tdb.ExecContext(ctx, "INSERT OR REPLACE INTO ingredientes (id, name) VALUES (?, ?)", "w", "v")
		},
		func() {
			rows, err := tdb.QueryContext(ctx, "SELECT id FROM ingredientes LIMIT 1")
			if err == nil {
				rows.Close()
			}
		},
		func() {
			var v string
			tdb.QueryRowContext(ctx, "SELECT name FROM ingredientes WHERE id = ?", "seed").Scan(&v)
		},
	} {
		wg.Add(1)
		go func(f func()) {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					f()
				}
			}
		}(op)
	}

	time.Sleep(100 * time.Millisecond)
	close(done)
	wg.Wait()

	if collector.TotalRecorded() < 3 {
		t.Errorf("TotalRecorded = %d, want >= 3", collector.TotalRecorded())
	}
}

// BenchmarkTimedDBOverhead compares the wrapper against the raw *sql.DB on
// the same query to isolate instrumentation cost.
func BenchmarkTimedDBOverhead(b *testing.B) {
	db, _ := sql.Open("sqlite", ":memory:")
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.Exec("CREATE TABLE bench (id INTEGER PRIMARY KEY, val TEXT)")
	db.Exec("INSERT INTO bench VALUES (1, 'x')")
	collector := perf.NewCollector(perf.DefaultRingSize)

	ctx := context.Background()

	b.Run("RawDB", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			db.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1")
		}
	})

	tdb := NewTimedDB(db, collector)
	b.Run("TimedDB", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			tdb.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1")
		}
	})
}
