// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/wikithat/internal/api"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/supervisor"
	"github.com/tomtom215/wikithat/internal/supervisor/services"
)

// badgerGCDiscardRatio is the value-log rewrite threshold for rate limit GC.
const badgerGCDiscardRatio = 0.5

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the catalog sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logging.Error().Err(err).Msg("Shutdown cleanup failed")
				}
			}()
			if err := a.withServing(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("rate_limit_store", cfg.RateLimit.Store).
		Bool("verdicts", cfg.VerdictEnabled()).
		Msg("Starting wikithat")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Blanket request limit is disabled (DISABLE_RATE_LIMIT=true)")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", cfg.Database.CheckpointInterval, a.db.Checkpoint))
	}
	if a.badgerStore != nil && cfg.RateLimit.GCInterval > 0 {
		bs := a.badgerStore
		tree.AddDataService(services.NewPeriodicService("ratelimit-gc", cfg.RateLimit.GCInterval, func(context.Context) error {
			return bs.RunGC(badgerGCDiscardRatio)
		}))
	}

	tree.AddSyncService(services.NewSyncService(a.manager))

	router := api.NewRouter(a.handler(), api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Verdict generation can take most of the xAI timeout.
		WriteTimeout: cfg.Server.Timeout + cfg.XAI.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, services.DefaultShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped")
	return nil
}
