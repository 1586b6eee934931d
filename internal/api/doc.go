// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Package api implements the HTTP surface: the Chi router, the request
// observability middleware, security headers, and the JSON handlers for
// health, authentication and user management.
//
// The request middleware is the template's core observability feature:
// every request gets a correlation ID and an X-Request-ID, a
// request-scoped logger in the context, and exactly two events — started
// plus completed (or failed, when the handler panics).
package api
