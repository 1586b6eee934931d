// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/beaconhq/beacon/internal/logging"
)

// RequestIDHeader is honored on requests and set on every response.
const RequestIDHeader = "X-Request-ID"

// statusRecorder captures the status code and response size written by the
// downstream handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.status = http.StatusOK
		r.wroteHeader = true
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += int64(n)
	return n, err
}

// RequestLogging returns the request observability middleware. For every
// request it:
//
//   - generates a correlation ID and honors (or issues) X-Request-ID,
//     storing both in the context with a request-scoped logger;
//   - emits "request started" on entry;
//   - emits "request completed" on normal completion, or "request failed"
//     if the handler panicked — the panic is re-raised afterwards so the
//     recovery middleware still handles the response.
//
// Exactly two events are emitted per request and both carry the same
// correlation ID. When request logging is disabled via configuration, IDs
// are still assigned and propagated; only the events are suppressed.
func RequestLogging(registry *logging.Registry, perf *logging.PerformanceLogger) func(http.Handler) http.Handler {
	enabled := registry.Config().RequestLogging
	base := registry.Requests()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := logging.GenerateCorrelationID()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = logging.GenerateRequestID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLogger := base.With().
				Str("correlation_id", correlationID).
				Str("request_id", requestID).
				Logger()

			ctx := r.Context()
			ctx = logging.ContextWithCorrelationID(ctx, correlationID)
			ctx = logging.ContextWithRequestID(ctx, requestID)
			ctx = logging.ContextWithLogger(ctx, reqLogger)
			r = r.WithContext(ctx)

			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("client_ip", clientIP(r)).
				Str("user_agent", r.UserAgent()).
				Msg("request started")

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				elapsed := time.Since(start)
				if p := recover(); p != nil {
					reqLogger.Error().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("exception_type", fmt.Sprintf("%T", p)).
						Str("exception_message", fmt.Sprint(p)).
						Float64("duration_seconds", elapsed.Seconds()).
						Msg("request failed")
					panic(p)
				}
				reqLogger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status_code", rec.status).
					Float64("duration_seconds", elapsed.Seconds()).
					Int64("response_size", rec.size).
					Msg("request completed")
				perf.LogRequestTiming(r.Method, r.URL.Path, elapsed, rec.status)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// clientIP extracts the originating client address, preferring proxy
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
