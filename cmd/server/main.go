// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/beaconhq/beacon/internal/api"
	"github.com/beaconhq/beacon/internal/auth"
	"github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/database"
	"github.com/beaconhq/beacon/internal/logging"
	"github.com/beaconhq/beacon/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "beacon: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logCfg, err := cfg.Logging.Build()
	if err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}
	registry, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer func() { _ = registry.Close() }()

	appLog := registry.App()
	appLog.Info().
		Str("version", cfg.App.Version).
		Str("environment", cfg.Server.Environment).
		Msg("starting beacon")

	db, err := database.Open(cfg.Database.Path, registry, logCfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var jwtManager *auth.JWTManager
	var admin *auth.AdminCredentials
	if cfg.Security.AuthMode == "jwt" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		admin, err = auth.NewAdminCredentials(&cfg.Security)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	} else {
		appLog.Warn().Msg("authentication disabled (AUTH_MODE=none); do not run this in production")
	}

	security := logging.NewSecurityLogger(registry)
	handlers := api.NewHandlers(cfg, db, jwtManager, admin, security)
	router := api.NewRouter(handlers, registry)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(registry), supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPServerService(server, tree.ShutdownTimeout()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLog.Info().Str("addr", server.Addr).Msg("http server listening")
	if err := tree.Serve(ctx); err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	appLog.Info().Msg("shutdown complete")
	return nil
}
