// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Package logging provides the structured logging core for Beacon.
//
// The package is built on rs/zerolog and exposes an explicitly constructed
// Registry instead of a global mutable logger set. The registry is created
// once at process start from a validated Config and is immutable afterwards:
//
//	reg, err := logging.New(cfg)
//	if err != nil {
//	    // misconfigured logging is a startup error, not a silent fallback
//	    os.Exit(1)
//	}
//	defer reg.Close()
//
//	appLog := reg.App()
//	appLog.Info().Str("version", version).Msg("starting")
//
// # Sinks and formats
//
// Events always go to the console sink. When a log file is configured, they
// additionally go to a rotating file sink and to a second rotating sink that
// only accepts ERROR and above (same path with an "_error" suffix). Each sink
// renders events with one of four formats: json, text, structured, or pretty.
// Unknown format names are rejected when the Config is built.
//
// # Rotation
//
// Three rotation policies are supported: size (delegated to lumberjack,
// bounded by MaxSize/Retention), daily (rollover at local midnight, backups
// suffixed .YYYY-MM-DD), and weekly (rollover at the ISO week boundary,
// backups suffixed .YYYY-Www). Retention bounds the number of kept backups
// for all policies.
//
// # Concurrency
//
// Each rendered record is written with a single Write call behind a per-sink
// mutex, so concurrent callers never interleave partial lines. A failed write
// to a sink is discarded; logging never propagates errors into request
// handling.
//
// # Context
//
// Correlation and request IDs travel through context.Context. Ctx(ctx)
// returns a logger annotated with whatever IDs the context carries:
//
//	logging.Ctx(ctx).Info().Msg("processing request")
package logging
