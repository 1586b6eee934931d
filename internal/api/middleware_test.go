// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/beaconhq/beacon/internal/logging"
)

// syncBuffer is a goroutine-safe sink for registry output.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.WriteString(string(p))
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// logRecord mirrors the json format's on-disk shape for assertions.
type logRecord struct {
	Level         string         `json:"level"`
	Logger        string         `json:"logger"`
	Message       string         `json:"message"`
	CorrelationID string         `json:"correlation_id"`
	Extra         map[string]any `json:"extra"`
}

func parseRecords(t *testing.T, out string) []logRecord {
	t.Helper()
	var records []logRecord
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var rec logRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unparseable log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func recordsWithMessage(records []logRecord, message string) []logRecord {
	var out []logRecord
	for _, rec := range records {
		if rec.Message == message {
			out = append(out, rec)
		}
	}
	return out
}

func noopPerf() *logging.PerformanceLogger {
	return logging.NewPerformanceLoggerWithLogger(zerolog.Nop(), time.Second)
}

func TestRequestLoggingEmitsTwoEvents(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	registry := logging.NewTestRegistry(buf)

	handler := RequestLogging(registry, noopPerf())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response missing X-Request-ID")
	}

	records := parseRecords(t, buf.String())
	started := recordsWithMessage(records, "request started")
	completed := recordsWithMessage(records, "request completed")
	if len(started) != 1 || len(completed) != 1 {
		t.Fatalf("got %d started / %d completed events, want 1/1", len(started), len(completed))
	}

	if started[0].CorrelationID == "" {
		t.Error("started event missing correlation_id")
	}
	if started[0].CorrelationID != completed[0].CorrelationID {
		t.Errorf("correlation IDs differ: %q vs %q",
			started[0].CorrelationID, completed[0].CorrelationID)
	}
	if got := completed[0].Extra["status_code"]; got != float64(http.StatusTeapot) {
		t.Errorf("status_code = %v, want %d", got, http.StatusTeapot)
	}
	if got := completed[0].Extra["response_size"]; got != float64(len("short and stout")) {
		t.Errorf("response_size = %v, want %d", got, len("short and stout"))
	}
	if got := started[0].Extra["user_agent"]; got != "test-agent" {
		t.Errorf("user_agent = %v, want test-agent", got)
	}
}

func TestRequestLoggingHonorsIncomingRequestID(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	registry := logging.NewTestRegistry(buf)

	var seenID string
	handler := RequestLogging(registry, noopPerf())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seenID != "client-supplied-id" {
		t.Errorf("context request ID = %q, want client-supplied-id", seenID)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("response request ID = %q, want client-supplied-id", got)
	}
}

func TestRequestLoggingPanicPropagates(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	registry := logging.NewTestRegistry(buf)

	handler := RequestLogging(registry, noopPerf())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		handler.ServeHTTP(rec, req)
	}()

	if recovered != "handler exploded" {
		t.Errorf("recovered = %v, want the original panic value", recovered)
	}

	records := parseRecords(t, buf.String())
	started := recordsWithMessage(records, "request started")
	failed := recordsWithMessage(records, "request failed")
	if len(started) != 1 || len(failed) != 1 {
		t.Fatalf("got %d started / %d failed events, want 1/1", len(started), len(failed))
	}
	if started[0].CorrelationID != failed[0].CorrelationID {
		t.Error("started and failed events carry different correlation IDs")
	}
	if got := failed[0].Extra["exception_message"]; got != "handler exploded" {
		t.Errorf("exception_message = %v", got)
	}
	if failed[0].Level != "ERROR" {
		t.Errorf("failed event level = %q, want ERROR", failed[0].Level)
	}
}

func TestRequestLoggingDisabledStillAssignsIDs(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	cfg := logging.DefaultConfig()
	cfg.ConsoleFormat = logging.FormatJSON
	cfg.ConsoleOutput = buf
	cfg.RequestLogging = false
	registry, err := logging.New(cfg)
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	var gotCorrelation string
	handler := RequestLogging(registry, noopPerf())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCorrelation = logging.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotCorrelation == "" {
		t.Error("correlation ID not assigned with request logging disabled")
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("X-Request-ID not assigned with request logging disabled")
	}
	records := parseRecords(t, buf.String())
	if n := len(recordsWithMessage(records, "request started")); n != 0 {
		t.Errorf("got %d started events with request logging disabled, want 0", n)
	}
}

func TestRequestLoggingConcurrentRequests(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	registry := logging.NewTestRegistry(buf)

	handler := RequestLogging(registry, noopPerf())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	records := parseRecords(t, buf.String())
	started := recordsWithMessage(records, "request started")
	completed := recordsWithMessage(records, "request completed")
	if len(started) != n || len(completed) != n {
		t.Fatalf("got %d started / %d completed events, want %d each", len(started), len(completed), n)
	}

	// Each correlation ID appears on exactly one started and one completed
	// event.
	seen := make(map[string]int, n)
	for _, rec := range append(started, completed...) {
		seen[rec.CorrelationID]++
	}
	if len(seen) != n {
		t.Errorf("got %d distinct correlation IDs, want %d", len(seen), n)
	}
	for id, count := range seen {
		if count != 2 {
			t.Errorf("correlation ID %s appears on %d events, want 2", id, count)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", nil, "10.0.0.1"},
		{"x-forwarded-for single", "10.0.0.1:5555",
			map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"x-forwarded-for chain", "10.0.0.1:5555",
			map[string]string{"X-Forwarded-For": "203.0.113.7, 198.51.100.2"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:5555",
			map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded-for wins over real-ip", "10.0.0.1:5555",
			map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "203.0.113.9"}, "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	for _, production := range []bool{false, true} {
		handler := SecurityHeaders(production)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q", got)
		}
		if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("X-Frame-Options = %q", got)
		}
		hsts := rec.Header().Get("Strict-Transport-Security")
		if production && hsts == "" {
			t.Error("HSTS missing in production")
		}
		if !production && hsts != "" {
			t.Error("HSTS set outside production")
		}
	}
}
