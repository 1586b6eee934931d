// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Package database implements the DuckDB-backed persistence layer.
//
// All statements run through instrumented helpers: when SQL logging is
// enabled each statement produces a DEBUG event (with arguments only if
// separately enabled), and statements slower than the configured
// threshold are reported through the performance logger regardless.
package database
