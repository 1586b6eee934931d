// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/beaconhq/beacon/internal/logging"
)

type claimsKey struct{}

// ClaimsFromContext retrieves the authenticated claims stored by
// RequireAuth, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// RequireAuth returns middleware enforcing a valid Bearer token. Rejections
// are recorded as ACCESS_DENIED security events before the 401 is written.
// When manager is nil (AUTH_MODE=none) the middleware passes every request
// through untouched.
func RequireAuth(manager *JWTManager, security *logging.SecurityLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if manager == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				security.LogAccessDenied(r.Method, r.URL.Path, remoteIP(r), "missing bearer token")
				writeUnauthorized(w, r, "Not authenticated")
				return
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				security.LogAccessDenied(r.Method, r.URL.Path, remoteIP(r), "invalid token")
				writeUnauthorized(w, r, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]string{"detail": detail}
	if id := logging.RequestIDFromContext(r.Context()); id != "" {
		body["request_id"] = id
	}
	_ = json.NewEncoder(w).Encode(body)
}
