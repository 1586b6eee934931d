// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/beaconhq/beacon/internal/logging"
)

// errorResponse is the JSON shape for all error responses.
type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes a JSON error response carrying the request ID so a
// client-reported failure can be matched against the logs.
func writeError(w http.ResponseWriter, r *http.Request, status int, detail, code string) {
	writeJSON(w, r, status, errorResponse{
		Detail:    detail,
		RequestID: logging.RequestIDFromContext(r.Context()),
		ErrorCode: code,
	})
}
