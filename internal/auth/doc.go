// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

// Package auth implements JWT-based authentication.
//
// Tokens are stateless HS256 JWTs carrying a username and role; they
// expire after the configured session timeout and cannot be revoked
// earlier. The bootstrap admin account is configured through
// ADMIN_USERNAME / ADMIN_PASSWORD and verified with bcrypt.
//
// RequireAuth is the request gate: it validates Bearer tokens, records
// ACCESS_DENIED security events for rejections, and stores the claims in
// the request context for handlers.
package auth
