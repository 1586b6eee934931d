// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Package supervisor runs long-lived services under a suture v4 tree.
// Lifecycle events are routed through slog into the structured log stream.
package supervisor
