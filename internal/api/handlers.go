// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/beaconhq/beacon/internal/auth"
	"github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/database"
	"github.com/beaconhq/beacon/internal/logging"
)

// healthCheckTimeout bounds the database ping in the health handler.
const healthCheckTimeout = 2 * time.Second

// Handlers carries the dependencies shared by all HTTP handlers.
type Handlers struct {
	cfg      *config.Config
	db       *database.DB
	jwt      *auth.JWTManager
	admin    *auth.AdminCredentials
	security *logging.SecurityLogger
}

// NewHandlers wires the handler set. jwt and admin are nil when
// AUTH_MODE=none.
func NewHandlers(cfg *config.Config, db *database.DB, jwt *auth.JWTManager, admin *auth.AdminCredentials, security *logging.SecurityLogger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		db:       db,
		jwt:      jwt,
		admin:    admin,
		security: security,
	}
}

// handleRoot returns the service banner.
func (h *Handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"status":  "running",
	})
}

// handleHealth reports liveness, including a bounded database ping.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	overall := "healthy"
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("health check database ping failed")
		overall = "degraded"
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r, status, map[string]any{
		"status":   overall,
		"database": dbStatus,
		"version":  h.cfg.App.Version,
	})
}
