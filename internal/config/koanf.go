// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority
// order. The first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/beacon/config.yaml",
	"/etc/beacon/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied before config file
// and environment variables.
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "beacon",
			Version: "0.1.0",
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path: "data/beacon.duckdb",
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			AdminUsername:     "",
			AdminPassword:     "",
			SessionTimeout:    24 * time.Hour,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			ConsoleFormat:      "pretty",
			File:               "",
			MaxSize:            10,
			Retention:          5,
			Rotation:           "daily",
			RequestLogging:     true,
			SQLLogging:         false,
			SQLQueries:         false,
			SlowQueryThreshold: 1.0,
		},
	}
}

// Load builds the configuration from layered sources and validates it.
// Any error here is a startup error; the caller is expected to exit.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive from the environment as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to koanf config paths.
// Only listed variables are honored; everything else in the environment is
// ignored rather than accidentally unmarshaled.
var envMappings = map[string]string{
	"app_name":    "app.name",
	"app_version": "app.version",

	"server_host":    "server.host",
	"server_port":    "server.port",
	"server_timeout": "server.timeout",
	"environment":    "server.environment",

	"database_path": "database.path",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"session_timeout":     "security.session_timeout",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":                  "logging.level",
	"log_format":                 "logging.format",
	"console_log_format":         "logging.console_format",
	"log_file":                   "logging.file",
	"log_max_size":               "logging.max_size",
	"log_retention":              "logging.retention",
	"log_rotation":               "logging.rotation",
	"enable_request_logging":     "logging.request_logging",
	"enable_sql_logging":         "logging.sql_logging",
	"log_sql_queries":            "logging.sql_queries",
	"log_slow_queries_threshold": "logging.slow_query_threshold",
}

// envTransformFunc maps environment variable names to koanf paths.
// Returning "" drops the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
