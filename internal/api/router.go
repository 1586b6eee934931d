// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/beaconhq/beacon/internal/auth"
	"github.com/beaconhq/beacon/internal/logging"
)

// NewRouter assembles the HTTP routing tree.
//
// Middleware order matters: Recoverer sits outside RequestLogging so a
// panicking handler first produces a "request failed" event, then the
// re-raised panic is converted to a 500 by Recoverer.
func NewRouter(h *Handlers, registry *logging.Registry) http.Handler {
	r := chi.NewRouter()

	sec := h.cfg.Security
	perf := logging.NewPerformanceLogger(registry)

	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging(registry, perf))
	r.Use(SecurityHeaders(h.cfg.Server.IsProduction()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   sec.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	if !sec.RateLimitDisabled {
		r.Use(httprate.Limit(
			sec.RateLimitRequests,
			sec.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
		))
	}

	r.NotFound(h.handleNotFound)

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireAuth(h.jwt, h.security))
			r.Get("/", h.handleListUsers)
			r.Post("/", h.handleCreateUser)
			r.Get("/{id}", h.handleGetUser)
			r.Put("/{id}", h.handleUpdateUser)
			r.Delete("/{id}", h.handleDeleteUser)
		})
	})

	return r
}

// handleNotFound records unknown-path requests as security events before
// returning 404. Bursts of these usually indicate endpoint probing.
func (h *Handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.security.LogNotFound(r.Method, r.URL.Path, clientIP(r))
	writeError(w, r, http.StatusNotFound, "Not found", "not_found")
}
