// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/beaconhq/beacon/internal/config"
)

// minPasswordLen is the minimum accepted admin password length.
const minPasswordLen = 8

// AdminCredentials verifies the bootstrap admin login. The configured
// password is bcrypt-hashed at startup so the plaintext is not retained
// for the process lifetime.
type AdminCredentials struct {
	username     string
	passwordHash []byte
}

// NewAdminCredentials hashes the configured admin password.
func NewAdminCredentials(cfg *config.SecurityConfig) (*AdminCredentials, error) {
	if cfg.AdminUsername == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME is required but was empty")
	}
	if len(cfg.AdminPassword) < minPasswordLen {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &AdminCredentials{
		username:     cfg.AdminUsername,
		passwordHash: hash,
	}, nil
}

// Verify reports whether the supplied credentials match. Username
// comparison is constant-time; bcrypt comparison is constant-time by
// construction.
func (c *AdminCredentials) Verify(username, password string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(c.username), []byte(username)) == 1
	passMatch := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userMatch && passMatch
}
