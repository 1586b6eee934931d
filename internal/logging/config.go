// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format identifies one of the closed set of log record renderers.
// Formats are resolved once at configuration time; an unknown name is a
// configuration error, never a silent fallback.
type Format string

const (
	// FormatJSON renders one self-describing JSON record per line with a
	// fixed base field set plus a nested "extra" mapping.
	FormatJSON Format = "json"

	// FormatText renders timestamp, level, logger and message only.
	FormatText Format = "text"

	// FormatStructured renders an RFC3339 timestamp, level, logger, message
	// and inline key=value extras, uncolored.
	FormatStructured Format = "structured"

	// FormatPretty renders a colorized, fixed-width, human-scannable line.
	// Intended for development consoles.
	FormatPretty Format = "pretty"
)

// ParseFormat resolves a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	case FormatStructured:
		return FormatStructured, nil
	case FormatPretty:
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want json, text, structured or pretty)", name)
	}
}

// RotationPolicy identifies the rule governing when a file sink is closed
// and a new one opened.
type RotationPolicy string

const (
	// RotateSize rolls over when the file exceeds MaxSize megabytes.
	RotateSize RotationPolicy = "size"

	// RotateDaily rolls over at local midnight.
	RotateDaily RotationPolicy = "daily"

	// RotateWeekly rolls over at the ISO week boundary.
	RotateWeekly RotationPolicy = "weekly"
)

// ParseRotation resolves a rotation policy name.
func ParseRotation(name string) (RotationPolicy, error) {
	switch RotationPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case RotateSize:
		return RotateSize, nil
	case RotateDaily:
		return RotateDaily, nil
	case RotateWeekly:
		return RotateWeekly, nil
	default:
		return "", fmt.Errorf("unknown log rotation policy %q (want size, daily or weekly)", name)
	}
}

// ParseLevel resolves a level name to a zerolog.Level.
// Unlike zerolog's own parser this rejects unknown names so that a typo in
// LOG_LEVEL fails at startup.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	case "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Config holds the resolved logging configuration. It is loaded once at
// process start and never mutated afterwards; reconfiguration requires a
// restart.
type Config struct {
	// Level is the minimum level emitted by every logger in the registry.
	Level zerolog.Level

	// FileFormat renders records written to the file sinks.
	FileFormat Format

	// ConsoleFormat renders records written to the console sink.
	ConsoleFormat Format

	// FilePath enables the rotating file sinks when non-empty, e.g.
	// "logs/app.log". The error-only sink derives its path from this one
	// ("logs/app_error.log").
	FilePath string

	// MaxSize is the rotation threshold in megabytes for the size policy.
	MaxSize int

	// Retention bounds the number of rotated backups kept per sink.
	Retention int

	// Rotation selects the rotation policy for the file sinks.
	Rotation RotationPolicy

	// RequestLogging toggles the request-logging middleware.
	RequestLogging bool

	// SQLLogging emits a DEBUG event per executed statement.
	SQLLogging bool

	// SQLQueries additionally includes statement arguments in SQL events.
	// Has no effect unless SQLLogging is set.
	SQLQueries bool

	// SlowQueryThreshold is the minimum duration at which a query is
	// reported by the performance logger.
	SlowQueryThreshold time.Duration

	// ConsoleOutput overrides the console sink destination. Defaults to
	// os.Stdout. Used by tests to capture output.
	ConsoleOutput io.Writer

	// NoColor disables ANSI colors in the pretty format.
	NoColor bool
}

// DefaultConfig returns the configuration used when nothing is set in the
// environment: info-level JSON to files, pretty console, daily rotation.
func DefaultConfig() Config {
	return Config{
		Level:              zerolog.InfoLevel,
		FileFormat:         FormatJSON,
		ConsoleFormat:      FormatPretty,
		FilePath:           "",
		MaxSize:            10,
		Retention:          5,
		Rotation:           RotateDaily,
		RequestLogging:     true,
		SlowQueryThreshold: time.Second,
	}
}
