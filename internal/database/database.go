// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/beaconhq/beacon/internal/logging"
)

// maxLoggedQueryLen caps statement text in DEBUG events.
const maxLoggedQueryLen = 1024

// DB wraps the DuckDB connection with statement instrumentation. Every
// query and exec goes through the instrumented helpers so SQL logging and
// slow-query detection apply uniformly.
type DB struct {
	conn       *sql.DB
	logger     zerolog.Logger
	perf       *logging.PerformanceLogger
	sqlLogging bool
	sqlQueries bool
}

// Open opens (or creates) the DuckDB database at path and initializes the
// schema. An empty path opens an in-memory database.
func Open(path string, registry *logging.Registry, logCfg logging.Config) (*DB, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// DuckDB is an embedded single-writer engine; a small pool is enough.
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn:       conn,
		logger:     registry.Database(),
		perf:       logging.NewPerformanceLoggerWithLogger(registry.Performance(), logCfg.SlowQueryThreshold),
		sqlLogging: logCfg.SQLLogging,
		sqlQueries: logCfg.SQLQueries,
	}

	if err := db.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db.logger.Info().Str("path", displayPath(path)).Msg("database opened")
	return db, nil
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}

func (db *DB) initSchema(ctx context.Context) error {
	const schema = `
CREATE SEQUENCE IF NOT EXISTS users_id_seq;
CREATE TABLE IF NOT EXISTS users (
    id         BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
    name       VARCHAR NOT NULL,
    email      VARCHAR NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
);`
	if _, err := db.exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// query runs a statement returning rows, with timing and SQL logging.
func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	db.observe(ctx, query, args, time.Since(start), err)
	return rows, err
}

// queryRow runs a statement returning at most one row.
func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, args...)
	db.observe(ctx, query, args, time.Since(start), nil)
	return row
}

// exec runs a statement returning no rows.
func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query, args...)
	db.observe(ctx, query, args, time.Since(start), err)
	return res, err
}

// observe emits per-statement DEBUG events when SQL logging is enabled and
// routes slow statements to the performance logger regardless.
func (db *DB) observe(ctx context.Context, query string, args []any, elapsed time.Duration, err error) {
	if db.sqlLogging {
		e := db.logger.Debug().
			Str("query", truncateQuery(query)).
			Float64("duration_seconds", elapsed.Seconds())
		if db.sqlQueries && len(args) > 0 {
			e = e.Interface("args", args)
		}
		if id := logging.CorrelationIDFromContext(ctx); id != "" {
			e = e.Str("correlation_id", id)
		}
		if err != nil {
			e = e.Err(err)
		}
		e.Msg("sql statement")
	}

	var params map[string]any
	if db.sqlQueries && len(args) > 0 {
		params = map[string]any{"args": args}
	}
	db.perf.LogSlowQuery(query, elapsed, params)
}

func truncateQuery(query string) string {
	if len(query) > maxLoggedQueryLen {
		return query[:maxLoggedQueryLen]
	}
	return query
}
