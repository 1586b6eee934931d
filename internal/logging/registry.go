// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Pre-configured logger names. All named loggers share the registry's sinks;
// the name only appears as the "logger" field on each record.
const (
	LoggerApp         = "app"
	LoggerAPI         = "api"
	LoggerDatabase    = "database"
	LoggerSecurity    = "security"
	LoggerRequests    = "requests"
	LoggerPerformance = "performance"
)

// noisyLoggers pins known-noisy logger names to WARNING regardless of the
// configured level. This is a static table, not dynamic policy; it mirrors
// the usual suppression of file watchers and HTTP client internals during
// development.
var noisyLoggers = map[string]zerolog.Level{
	"fsnotify":   zerolog.WarnLevel,
	"watcher":    zerolog.WarnLevel,
	"httpclient": zerolog.WarnLevel,
	"multipart":  zerolog.WarnLevel,
}

var fieldNamesOnce sync.Once

// configureFieldNames aligns zerolog's global field names with the record
// shape written to the sinks. Applied once per process.
func configureFieldNames() {
	fieldNamesOnce.Do(func() {
		zerolog.TimestampFieldName = fieldTimestamp
		zerolog.LevelFieldName = fieldLevel
		zerolog.MessageFieldName = fieldMessage
		zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000000Z07:00"
	})
}

// Registry is the process-wide set of named loggers sharing one assembled
// sink set. It is constructed exactly once at startup from a validated
// Config and never mutated afterwards; collaborators receive it explicitly
// instead of reaching for a global.
type Registry struct {
	cfg     Config
	base    zerolog.Logger
	closers []io.Closer

	app         zerolog.Logger
	api         zerolog.Logger
	database    zerolog.Logger
	security    zerolog.Logger
	requests    zerolog.Logger
	performance zerolog.Logger
}

// New assembles the sinks described by cfg and returns the registry.
// Errors are configuration errors (unwritable path, unknown policy) and are
// fatal by contract: the process must not start with a half-configured
// logging layer.
func New(cfg Config) (*Registry, error) {
	configureFieldNames()

	consoleOut := cfg.ConsoleOutput
	if consoleOut == nil {
		consoleOut = os.Stdout
	}

	r := &Registry{cfg: cfg}
	writers := []io.Writer{newFormatWriter(cfg.ConsoleFormat, consoleOut, cfg.NoColor)}

	if cfg.FilePath != "" {
		main, err := newRotatingWriter(cfg.FilePath, cfg.Rotation, cfg.MaxSize, cfg.Retention)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, main)
		writers = append(writers, newFormatWriter(cfg.FileFormat, main, true))

		errSink, err := newRotatingWriter(errorSinkPath(cfg.FilePath), cfg.Rotation, cfg.MaxSize, cfg.Retention)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.closers = append(r.closers, errSink)
		writers = append(writers, levelFilterWriter{
			w:   newFormatWriter(cfg.FileFormat, errSink, true),
			min: zerolog.ErrorLevel,
		})
	}

	r.base = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(cfg.Level).
		With().Timestamp().Logger().
		Hook(callerHook{})

	r.app = r.Named(LoggerApp)
	r.api = r.Named(LoggerAPI)
	r.database = r.Named(LoggerDatabase)
	r.security = r.Named(LoggerSecurity)
	r.requests = r.Named(LoggerRequests)
	r.performance = r.Named(LoggerPerformance)
	return r, nil
}

// NewTestRegistry builds a trace-level registry that writes JSON records to
// w. Intended for tests that capture and decode emitted events.
func NewTestRegistry(w io.Writer) *Registry {
	cfg := DefaultConfig()
	cfg.Level = zerolog.TraceLevel
	cfg.ConsoleFormat = FormatJSON
	cfg.ConsoleOutput = w
	r, err := New(cfg)
	if err != nil {
		// No file sinks are configured, so assembly cannot fail.
		panic(err)
	}
	return r
}

// Config returns the configuration the registry was built with.
func (r *Registry) Config() Config { return r.cfg }

// Named returns a logger carrying the given logger name. Names listed in
// the noise table are pinned to their table level.
func (r *Registry) Named(name string) zerolog.Logger {
	l := r.base.With().Str(fieldLogger, name).Logger()
	if lvl, ok := noisyLoggers[name]; ok && lvl > r.cfg.Level {
		l = l.Level(lvl)
	}
	return l
}

// App returns the application logger.
func (r *Registry) App() zerolog.Logger { return r.app }

// API returns the API logger.
func (r *Registry) API() zerolog.Logger { return r.api }

// Database returns the database logger.
func (r *Registry) Database() zerolog.Logger { return r.database }

// Security returns the security audit logger.
func (r *Registry) Security() zerolog.Logger { return r.security }

// Requests returns the request lifecycle logger.
func (r *Registry) Requests() zerolog.Logger { return r.requests }

// Performance returns the performance logger.
func (r *Registry) Performance() zerolog.Logger { return r.performance }

// Close releases the file sinks. The console sink is left untouched.
func (r *Registry) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// callerHook annotates every event with the module (source file base name),
// function and line of the emitting call site. The stack is walked past
// zerolog and this package so helper wrappers report their caller, not
// themselves.
type callerHook struct{}

func (callerHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel {
		return
	}
	pcs := make([]uintptr, 24)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !skippedFrame(frame.File) {
			e.Str(fieldModule, strings.TrimSuffix(filepath.Base(frame.File), ".go"))
			e.Str(fieldFunction, shortFuncName(frame.Function))
			e.Int(fieldLine, frame.Line)
			return
		}
		if !more {
			return
		}
	}
}

func skippedFrame(file string) bool {
	file = filepath.ToSlash(file)
	if strings.Contains(file, "github.com/rs/zerolog") {
		return true
	}
	// This package's own frames are skipped, except its tests.
	if strings.HasSuffix(file, "_test.go") {
		return false
	}
	return strings.Contains(file, "internal/logging")
}

func shortFuncName(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.Index(fn, "."); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}
