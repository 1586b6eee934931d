// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newRotatingWriter opens a rotating file sink for the given policy.
// It creates the log directory if absent and fails if the path is not
// writable, so misconfiguration surfaces at startup rather than at the
// first dropped record.
func newRotatingWriter(path string, policy RotationPolicy, maxSizeMB, retention int) (writeCloser, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	// Probe writability up front.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	switch policy {
	case RotateSize:
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close log file %s: %w", path, err)
		}
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: retention,
		}, nil
	case RotateDaily, RotateWeekly:
		w := &timedWriter{
			path:      path,
			policy:    policy,
			retention: retention,
			now:       time.Now,
			f:         f,
		}
		w.period = w.periodSuffix(w.now())
		return w, nil
	default:
		_ = f.Close()
		return nil, fmt.Errorf("unknown rotation policy %q", policy)
	}
}

type writeCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

// errorSinkPath derives the error-only sink path from the main log path:
// logs/app.log -> logs/app_error.log.
func errorSinkPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_error" + ext
}

// timedWriter is a calendar-based rotating file writer. lumberjack only
// rotates on size, so daily and weekly rollover is handled here: when a
// write crosses a period boundary the current file is renamed with the
// period suffix (app.log.2026-08-24 or app.log.2026-W34) and a fresh file
// is opened. Old backups beyond the retention count are removed.
type timedWriter struct {
	mu        sync.Mutex
	f         *os.File
	path      string
	policy    RotationPolicy
	retention int
	period    string
	now       func() time.Time // injectable for tests
}

func (w *timedWriter) periodSuffix(t time.Time) string {
	if w.policy == RotateWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return t.Format("2006-01-02")
}

func (w *timedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	suffix := w.periodSuffix(w.now())
	if suffix != w.period {
		if err := w.rotate(); err != nil {
			return 0, err
		}
		w.period = suffix
	}
	return w.f.Write(p)
}

// rotate closes the current file, stamps it with the period it covered and
// reopens the base path. Must be called with mu held.
func (w *timedWriter) rotate() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close before rotate: %w", err)
	}
	backup := w.path + "." + w.period
	if err := os.Rename(w.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename to %s: %w", backup, err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", w.path, err)
	}
	w.f = f
	w.prune()
	return nil
}

// prune removes the oldest backups beyond the retention count. Backup
// suffixes sort lexicographically in chronological order for both policies,
// so plain string sorting suffices.
func (w *timedWriter) prune() {
	if w.retention <= 0 {
		return
	}
	matches, err := filepath.Glob(w.path + ".*")
	if err != nil || len(matches) <= w.retention {
		return
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-w.retention] {
		_ = os.Remove(old)
	}
}

func (w *timedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
