package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamagourmet/internal/adapters/http/perf"
)

func timedHandler(collector *perf.Collector, status int) http.Handler {
	return Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
}

func TestTimingRecordsRequest(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := timedHandler(collector, http.StatusOK)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/gama/dashboard", nil))

	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

func TestTimingSkipsStatic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := timedHandler(collector, http.StatusOK)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/static/app.css", nil))

	if collector.TotalRecorded() != 0 {
		t.Errorf("TotalRecorded = %d, want 0 (static excluded)", collector.TotalRecorded())
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestTimingCapturesStatusCode(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := timedHandler(collector, http.StatusNotFound)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

func TestTimingNilCollector(t *testing.T) {
	handler := timedHandler(nil, http.StatusOK)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/login", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// The middleware does not recover panics (the access gate does), but its
// deferred timing must still run so the statusWriter returns to the pool.
func TestTimingHandlerPanic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate, got nil")
		}
		if collector.TotalRecorded() != 1 {
			t.Errorf("TotalRecorded = %d, want 1 (defer must run even on panic)", collector.TotalRecorded())
		}
	}()

	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/gama/menus", nil))
}

func TestTimingDefaultStatusWhenNotSet(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hola")) // implicit 200
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestTimingEntryFields(t *testing.T) {
	collector := perf.NewCollector(1)
	handler := timedHandler(collector, http.StatusCreated)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/gama/empresas", nil))

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths len = %d, want 1", len(snap.SlowestPaths))
	}
	if snap.SlowestPaths[0].Path != "POST /gama/empresas" {
		t.Errorf("Path = %q, want \"POST /gama/empresas\"", snap.SlowestPaths[0].Path)
	}
}

// Pool reuse must not leak status codes between requests: a 500 followed by
// a handler that never calls WriteHeader must still report 200.
func TestTimingPoolNoStateLeak(t *testing.T) {
	collector := perf.NewCollector(100)

	rr1 := httptest.NewRecorder()
	timedHandler(collector, http.StatusInternalServerError).ServeHTTP(rr1, httptest.NewRequest("GET", "/gama/platos", nil))
	if rr1.Code != 500 {
		t.Errorf("request 1 status = %d, want 500", rr1.Code)
	}

	implicit := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	rr2 := httptest.NewRecorder()
	implicit.ServeHTTP(rr2, httptest.NewRequest("GET", "/gama/planes", nil))
	if rr2.Code != 200 {
		t.Errorf("request 2 status = %d, want 200 (pool must not leak 500)", rr2.Code)
	}
}

func BenchmarkTiming(b *testing.B) {
	collector := perf.NewCollector(perf.DefaultRingSize)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest("GET", "/gama/menus", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}
}
