// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// maxQueryLen caps the SQL text attached to a slow-query event.
const maxQueryLen = 1024

// slowRequestThreshold is the duration above which a completed request is
// reported at WARNING instead of INFO.
const slowRequestThreshold = time.Second

// PerformanceLogger emits timing events for database queries and HTTP
// requests. Slow-query events are gated on the configured threshold;
// request-timing events are always emitted.
type PerformanceLogger struct {
	logger    zerolog.Logger
	threshold time.Duration
}

// NewPerformanceLogger creates a performance logger backed by the registry,
// using the registry's configured slow-query threshold.
func NewPerformanceLogger(r *Registry) *PerformanceLogger {
	return &PerformanceLogger{
		logger:    r.Performance(),
		threshold: r.Config().SlowQueryThreshold,
	}
}

// NewPerformanceLoggerWithLogger creates a performance logger over an
// arbitrary zerolog logger and threshold. Used by tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPerformanceLoggerWithLogger(logger zerolog.Logger, threshold time.Duration) *PerformanceLogger {
	return &PerformanceLogger{logger: logger, threshold: threshold}
}

// LogSlowQuery emits exactly one WARNING event when duration meets or
// exceeds the threshold; below the threshold it is a no-op.
func (p *PerformanceLogger) LogSlowQuery(query string, duration time.Duration, params map[string]any) {
	if duration < p.threshold {
		return
	}
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}
	e := p.logger.Warn().
		Str("query", query).
		Float64("duration_seconds", duration.Seconds()).
		Float64("threshold_seconds", p.threshold.Seconds())
	if len(params) > 0 {
		e = e.Interface("params", params)
	}
	e.Msg("slow query detected")
}

// LogRequestTiming emits one event per completed request regardless of
// duration. Requests slower than one second are reported at WARNING.
func (p *PerformanceLogger) LogRequestTiming(method, path string, duration time.Duration, statusCode int) {
	e := p.logger.Info()
	if duration > slowRequestThreshold {
		e = p.logger.Warn()
	}
	e.Str("method", method).
		Str("path", path).
		Float64("duration_seconds", duration.Seconds()).
		Int("status_code", statusCode).
		Msg("request completed")
}
