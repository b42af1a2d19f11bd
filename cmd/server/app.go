// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package main

import (
	"errors"
	"fmt"

	"github.com/tomtom215/wikithat/internal/api"
	"github.com/tomtom215/wikithat/internal/cache"
	"github.com/tomtom215/wikithat/internal/catalog"
	"github.com/tomtom215/wikithat/internal/compare"
	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/database"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/ratelimit"
	"github.com/tomtom215/wikithat/internal/resolver"
	"github.com/tomtom215/wikithat/internal/sources"
)

var _ resolver.ComparisonInvalidator = (*database.DB)(nil)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	db       *database.DB
	engine   *catalog.Engine
	manager  *catalog.Manager
	resolver *resolver.Resolver

	// Only set by withServing.
	limitStore  ratelimit.Store
	badgerStore *ratelimit.BadgerStore
	compare     *compare.Service
	wikipedia   *sources.WikipediaClient
}

// newApp opens the database and wires the catalog and resolver.
func newApp(cfg *config.Config) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	engine := catalog.NewEngine(catalog.NewHTTPSitemapSource(&cfg.Catalog), db, &cfg.Catalog)
	a := &app{
		cfg:      cfg,
		db:       db,
		engine:   engine,
		manager:  catalog.NewManager(engine, &cfg.Catalog),
		resolver: resolver.New(db, &cfg.Resolver),
	}

	a.manager.SetOnSyncCompleted(func(res models.SyncResult) {
		a.resolver.InvalidateMemo()
		logging.Info().
			Int("inserted", res.Inserted).
			Int("skipped", res.Skipped).
			Msg("Resolver memo cleared after catalog sync")
	})
	return a, nil
}

// withServing wires the remote sources, rate limits and comparison service.
// Grokipedia and the verdict generator stay nil when unconfigured so the
// endpoints that need them answer 503.
func (a *app) withServing() error {
	store, badgerStore, err := ratelimit.OpenStore(&a.cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("open rate limit store: %w", err)
	}
	a.limitStore = store
	a.badgerStore = badgerStore

	a.wikipedia = sources.NewWikipediaClient(&a.cfg.Wikipedia)

	deps := compare.Deps{
		Resolver:  a.resolver,
		Content:   cache.NewContentCache(a.db, &a.cfg.Cache),
		Wikipedia: a.wikipedia,
		Votes:     a.db,
		Slugs:     a.db,

		VerdictLimiter: ratelimit.NewVerdictLimiter(store, a.cfg.RateLimit.Limit, a.cfg.RateLimit.Window),
		VoteLimiter:    ratelimit.NewLimiter(ratelimit.ActionTrustVote, store, a.cfg.RateLimit.Limit, a.cfg.RateLimit.Window),
		ScrapeLimiter:  ratelimit.NewLimiter(ratelimit.ActionScrape, store, a.cfg.RateLimit.Limit, a.cfg.RateLimit.Window),
	}

	if grok, err := sources.NewGrokipediaClient(&a.cfg.Grokipedia); err != nil {
		logging.Warn().Err(err).Msg("Grokipedia disabled")
	} else {
		deps.Grokipedia = grok
	}
	if verdicts, err := sources.NewVerdictClient(&a.cfg.XAI); err != nil {
		logging.Warn().Err(err).Msg("Verdict generation disabled")
	} else {
		deps.Verdicts = verdicts
	}

	a.compare = compare.NewService(deps)
	return nil
}

// handler builds the API handler over the wired components.
func (a *app) handler() *api.Handler {
	return api.NewHandler(api.HandlerDeps{
		Compare:   a.compare,
		Resolver:  a.resolver,
		Suggester: a.wikipedia,
		Sync:      a.manager,
		Store:     a.db,
		Version:   version,
	})
}

func (a *app) Close() error {
	var errs []error
	if a.badgerStore != nil {
		if err := a.badgerStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rate limit store: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
