// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	a := GenerateCorrelationID()
	b := GenerateCorrelationID()
	if len(a) != 8 || len(b) != 8 {
		t.Errorf("lengths = %d, %d; want 8", len(a), len(b))
	}
	if a == b {
		t.Error("consecutive correlation IDs collide")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" {
		t.Error("empty context returned non-empty IDs")
	}

	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithRequestID(ctx, "req-5678")

	if got := CorrelationIDFromContext(ctx); got != "corr1234" {
		t.Errorf("correlation ID = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-5678" {
		t.Errorf("request ID = %q", got)
	}
}

func TestCtxAnnotatesLogger(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithRequestID(ctx, "req-5678")

	Ctx(ctx).Info().Msg("annotated")

	ev := rawEvents(t, buf.String())[0]
	if ev[fieldCorrelationID] != "corr1234" {
		t.Errorf("correlation_id = %v", ev[fieldCorrelationID])
	}
	if ev[fieldRequestID] != "req-5678" {
		t.Errorf("request_id = %v", ev[fieldRequestID])
	}
}

func TestLoggerFromContextFallback(t *testing.T) {
	t.Parallel()

	// Must not panic and must return a usable logger.
	l := LoggerFromContext(context.Background())
	l.Debug().Msg("fallback logger works")
}
