// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// maxDetailLen caps the length of a single sanitized detail value.
const maxDetailLen = 256

// SecurityLogger emits audit events to the registry's security logger.
// Detail values are sanitized before emission: control characters are
// stripped so a hostile username cannot forge log lines, and long values
// are truncated.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger backed by the registry.
func NewSecurityLogger(r *Registry) *SecurityLogger {
	return &SecurityLogger{logger: r.Security()}
}

// NewSecurityLoggerWithLogger creates a security logger over an arbitrary
// zerolog logger. Used by tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger}
}

// LogEvent emits one WARNING event carrying the event type and the supplied
// details. Details are additive: the event_type field and the base record
// fields (level, logger, message, timestamp, caller fields, IDs) are fixed,
// and a detail key colliding with any of them is dropped rather than allowed
// to overwrite it.
func (l *SecurityLogger) LogEvent(eventType string, details map[string]any) {
	e := l.logger.Warn().Str("event_type", SanitizeValue(eventType))

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if reservedEventKey(k) {
			continue
		}
		switch v := details[k].(type) {
		case string:
			e = e.Str(k, SanitizeValue(v))
		default:
			e = e.Interface(k, v)
		}
	}
	e.Msg("security event")
}

// reservedEventKey reports whether a caller-supplied key would collide with
// a base record field or the fixed event_type.
func reservedEventKey(k string) bool {
	if k == "event_type" {
		return true
	}
	_, ok := baseFields[k]
	return ok
}

// LogLoginSuccess records a successful login.
func (l *SecurityLogger) LogLoginSuccess(username, clientIP, userAgent string) {
	l.LogEvent("LOGIN_SUCCESS", map[string]any{
		"username":   username,
		"client_ip":  clientIP,
		"user_agent": userAgent,
	})
}

// LogFailedLogin records a rejected login attempt.
func (l *SecurityLogger) LogFailedLogin(username, clientIP, userAgent, reason string) {
	l.LogEvent("FAILED_LOGIN", map[string]any{
		"username":   username,
		"client_ip":  clientIP,
		"user_agent": userAgent,
		"reason":     reason,
	})
}

// LogAccessDenied records a request rejected by authentication or
// authorization (401/403).
func (l *SecurityLogger) LogAccessDenied(method, path, clientIP, reason string) {
	l.LogEvent("ACCESS_DENIED", map[string]any{
		"method":    method,
		"path":      path,
		"client_ip": clientIP,
		"reason":    reason,
	})
}

// LogNotFound records a request for a nonexistent resource. Bursts of these
// from one address usually mean endpoint probing.
func (l *SecurityLogger) LogNotFound(method, path, clientIP string) {
	l.LogEvent("NOT_FOUND", map[string]any{
		"method":    method,
		"path":      path,
		"client_ip": clientIP,
	})
}

// SanitizeValue strips control characters and truncates overlong values.
func SanitizeValue(v string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)
	if len(cleaned) > maxDetailLen {
		cleaned = cleaned[:maxDetailLen]
	}
	return cleaned
}
