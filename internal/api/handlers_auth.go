// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"net/http"

	"github.com/goccy/go-json"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// handleLogin issues a JWT for valid admin credentials. Both outcomes are
// recorded as security events.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.jwt == nil {
		writeError(w, r, http.StatusNotFound, "Authentication is disabled", "auth_disabled")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", "invalid_body")
		return
	}

	ip := clientIP(r)
	if !h.admin.Verify(req.Username, req.Password) {
		h.security.LogFailedLogin(req.Username, ip, r.UserAgent(), "invalid credentials")
		writeError(w, r, http.StatusUnauthorized, "Incorrect username or password", "invalid_credentials")
		return
	}

	token, err := h.jwt.GenerateToken(req.Username, "admin")
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to issue token", "token_error")
		return
	}

	h.security.LogLoginSuccess(req.Username, ip, r.UserAgent())
	writeJSON(w, r, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.cfg.Security.SessionTimeout.Seconds()),
	})
}
