// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Command server is the Beacon entrypoint: it loads configuration,
// constructs the logging registry, opens the database, and runs the HTTP
// server under supervision until SIGINT or SIGTERM.
package main
