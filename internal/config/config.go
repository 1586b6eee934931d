// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/beaconhq/beacon/internal/logging"
)

// Config holds all application configuration loaded from environment
// variables and an optional config file.
//
// Loading order (Koanf v2, highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AppConfig identifies the service.
type AppConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - SERVER_HOST: bind address (default: 0.0.0.0)
//   - SERVER_PORT: listen port (default: 8000)
//   - SERVER_TIMEOUT: request read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production"`
}

// IsProduction reports whether the server runs in production mode.
// Controls HSTS emission and startup warnings.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds the DuckDB store settings.
//
// Environment variables:
//   - DATABASE_PATH: database file path; empty means in-memory
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// SecurityConfig holds authentication and request-protection settings.
//
// Environment variables:
//   - AUTH_MODE: jwt or none (default: jwt)
//   - JWT_SECRET: 32+ character signing secret (required for jwt mode)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: bootstrap admin credentials
//   - SESSION_TIMEOUT: token lifetime (default: 24h)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: request rate limit
//   - RATE_LIMIT_DISABLED: disable rate limiting (default: false)
//   - CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode" validate:"oneof=jwt none"`
	JWTSecret         string        `koanf:"jwt_secret"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds the raw logging settings as read from the
// environment. Build resolves them into a typed logging.Config; both Load
// and Build reject unknown names so a typo fails at startup.
//
// Environment variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: file sink format: json, text, structured, pretty (default: json)
//   - CONSOLE_LOG_FORMAT: console sink format (default: pretty)
//   - LOG_FILE: log file path; empty disables file sinks
//   - LOG_MAX_SIZE: size-rotation threshold in MB (default: 10)
//   - LOG_RETENTION: rotated backups kept (default: 5)
//   - LOG_ROTATION: size, daily or weekly (default: daily)
//   - ENABLE_REQUEST_LOGGING: request middleware toggle (default: true)
//   - ENABLE_SQL_LOGGING: per-statement DEBUG events (default: false)
//   - LOG_SQL_QUERIES: include statement arguments (default: false)
//   - LOG_SLOW_QUERIES_THRESHOLD: slow-query threshold in seconds (default: 1.0)
type LoggingConfig struct {
	Level              string  `koanf:"level"`
	Format             string  `koanf:"format"`
	ConsoleFormat      string  `koanf:"console_format"`
	File               string  `koanf:"file"`
	MaxSize            int     `koanf:"max_size" validate:"min=1"`
	Retention          int     `koanf:"retention" validate:"min=0"`
	Rotation           string  `koanf:"rotation"`
	RequestLogging     bool    `koanf:"request_logging"`
	SQLLogging         bool    `koanf:"sql_logging"`
	SQLQueries         bool    `koanf:"sql_queries"`
	SlowQueryThreshold float64 `koanf:"slow_query_threshold" validate:"min=0"`
}

// Build resolves the raw logging settings into a logging.Config.
func (l *LoggingConfig) Build() (logging.Config, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return logging.Config{}, err
	}
	fileFormat, err := logging.ParseFormat(l.Format)
	if err != nil {
		return logging.Config{}, fmt.Errorf("LOG_FORMAT: %w", err)
	}
	consoleFormat, err := logging.ParseFormat(l.ConsoleFormat)
	if err != nil {
		return logging.Config{}, fmt.Errorf("CONSOLE_LOG_FORMAT: %w", err)
	}
	rotation, err := logging.ParseRotation(l.Rotation)
	if err != nil {
		return logging.Config{}, err
	}

	return logging.Config{
		Level:              level,
		FileFormat:         fileFormat,
		ConsoleFormat:      consoleFormat,
		FilePath:           l.File,
		MaxSize:            l.MaxSize,
		Retention:          l.Retention,
		Rotation:           rotation,
		RequestLogging:     l.RequestLogging,
		SQLLogging:         l.SQLLogging,
		SQLQueries:         l.SQLQueries,
		SlowQueryThreshold: time.Duration(l.SlowQueryThreshold * float64(time.Second)),
	}, nil
}

// minJWTSecretLen is the minimum JWT secret length accepted in jwt mode.
const minJWTSecretLen = 32

// Validate checks the configuration for structural and cross-field errors.
// Called by Load; a validation failure is fatal at startup.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.Logging.Build(); err != nil {
		return err
	}

	if c.Security.AuthMode == "jwt" {
		if len(c.Security.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLen)
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required when AUTH_MODE=jwt")
		}
	}

	return nil
}
