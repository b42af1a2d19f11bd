// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"context"
	"time"

	"github.com/tomtom215/wikithat/internal/compare"
	"github.com/tomtom215/wikithat/internal/models"
)

// Comparer is the request-level service behind the comparison routes.
// Implemented by compare.Service.
type Comparer interface {
	Articles(ctx context.Context, topic string) (compare.Comparison, error)
	Verdict(ctx context.Context, topic, identity string) (compare.VerdictResult, error)
	Vote(ctx context.Context, topic, source, identity string) (compare.VoteResult, error)
	Votes(ctx context.Context, topic string) (compare.VoteCounts, error)
	CheckSlug(ctx context.Context, slug string) (compare.SlugCheck, error)
	CheckSlugs(ctx context.Context, slugs []string) ([]compare.SlugCheck, error)
	GrokipediaArticle(ctx context.Context, slug, identity string) (*models.Article, models.RateDecision, error)
}

// TopicResolver resolves topics and manages community mappings.
// Implemented by resolver.Resolver.
type TopicResolver interface {
	Resolve(ctx context.Context, topic string) string
	SaveMapping(ctx context.Context, topic, identifier string) (models.MappingOutcome, error)
	SearchIndex(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error)
}

// TitleSuggester offers source A title completions.
// Implemented by sources.WikipediaClient.
type TitleSuggester interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// SyncController starts background syncs. Implemented by catalog.Manager.
type SyncController interface {
	TriggerAsync() error
	IsSyncing() bool
	LastSyncTime() time.Time
}

// StatusStore reads the persisted sync record and checks liveness of the
// store. Implemented by database.DB.
type StatusStore interface {
	GetSyncStatus(ctx context.Context) (models.SyncStatus, error)
	Ping(ctx context.Context) error
}

// HandlerDeps wires a Handler. Suggester and Sync may be nil.
type HandlerDeps struct {
	Compare   Comparer
	Resolver  TopicResolver
	Suggester TitleSuggester
	Sync      SyncController
	Store     StatusStore
	Version   string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_health.go: liveness, readiness, health summary
//   - handlers_topics.go: resolve, topic mappings, title suggestions
//   - handlers_compare.go: comparison, verdict, trust votes, article fetch, slug checks
//   - handlers_sync.go: sync status and trigger
type Handler struct {
	compare   Comparer
	resolver  TopicResolver
	suggester TitleSuggester
	sync      SyncController
	store     StatusStore
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d HandlerDeps) *Handler {
	return &Handler{
		compare:   d.Compare,
		resolver:  d.Resolver,
		suggester: d.Suggester,
		sync:      d.Sync,
		store:     d.Store,
		version:   d.Version,
		startTime: time.Now(),
	}
}
