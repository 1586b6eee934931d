// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Package config loads and validates application configuration.
//
// Configuration is layered with Koanf v2: built-in defaults, then an
// optional YAML config file, then environment variables. Environment
// variables use flat legacy names (LOG_LEVEL, SERVER_PORT, JWT_SECRET)
// mapped onto the nested structure through a static table.
//
// Load() validates everything up front: unknown log formats, rotation
// policies or levels, out-of-range ports and incomplete jwt-mode
// credentials are all startup errors. The process never runs with a
// half-valid configuration.
package config
