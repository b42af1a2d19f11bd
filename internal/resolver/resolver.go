// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/wikithat/internal/cache"
	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/validation"
)

// Search defaults.
const (
	DefaultSearchLimit    = 20
	MaxSearchLimit        = 100
	DefaultSearchMinQuery = 2
	DefaultMemoTTL        = time.Hour
)

// Store is the persistence the resolver needs.
type Store interface {
	MappingLookup
	IndexLookup
	SaveTopicMapping(ctx context.Context, topic, identifier string) (models.MappingOutcome, error)
	SearchCatalog(ctx context.Context, normalizedQuery string, limit int) ([]models.CatalogEntry, error)
}

// ComparisonInvalidator is implemented by stores that cache comparison
// content. A store that implements it has the topic's source B article and
// verdict dropped when a mapping is replaced.
type ComparisonInvalidator interface {
	DeleteCachedComparison(ctx context.Context, topic string) error
}

// Resolver maps free-text topics to catalog identifiers.
type Resolver struct {
	store      Store
	strategies []Strategy
	memo       *cache.Cache[string]

	searchDefault  int
	searchMax      int
	searchMinQuery int
}

// New creates a resolver with the curated, normalized-index and heuristic
// stages in that order. cfg may be nil.
func New(store Store, cfg *config.ResolverConfig) *Resolver {
	r := &Resolver{
		store: store,
		strategies: []Strategy{
			NewCuratedStrategy(store),
			NewNormalizedIndexStrategy(store),
			HeuristicStrategy{},
		},
		searchDefault:  DefaultSearchLimit,
		searchMax:      MaxSearchLimit,
		searchMinQuery: DefaultSearchMinQuery,
	}

	memoTTL := DefaultMemoTTL
	if cfg != nil {
		if cfg.MemoTTL > 0 {
			memoTTL = cfg.MemoTTL
		}
		if cfg.SearchDefaultLimit > 0 {
			r.searchDefault = cfg.SearchDefaultLimit
		}
		if cfg.SearchMaxLimit > 0 {
			r.searchMax = cfg.SearchMaxLimit
		}
		if cfg.SearchMinQuery > 0 {
			r.searchMinQuery = cfg.SearchMinQuery
		}
	}
	r.memo = cache.New[string]("resolver_memo", memoTTL, 0)

	return r
}

// Resolve returns the best-effort identifier for topic. It never fails:
// a stage that errors is logged and skipped, and the heuristic stage always
// answers. Answers are memoised until InvalidateMemo is called or they expire.
func (r *Resolver) Resolve(ctx context.Context, topic string) string {
	topic = strings.TrimSpace(topic)

	if id, ok := r.memo.Get(topic); ok {
		metrics.RecordResolution(StageMemo)
		return id
	}

	for _, s := range r.strategies {
		id, ok, err := s.Resolve(ctx, topic)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("stage", s.Name()).Str("topic", topic).Msg("Resolver stage failed, falling through")
			continue
		}
		if !ok {
			continue
		}

		metrics.RecordResolution(s.Name())
		// Only store-backed answers are memoised.
		if s.Name() != StageHeuristic {
			r.memo.Set(topic, id)
		}
		return id
	}

	// Unreachable while HeuristicStrategy is last in the chain.
	return HeuristicIdentifier(topic)
}

// SaveMapping records a community mapping from topic to identifier. Both
// are sanitized first. The outcome is created for a new topic, upvoted
// when the same identifier is submitted again, and updated when a
// different identifier replaces the old one with its vote count reset to 1.
// An update also drops the cached comparison for the topic; failing to do so
// is logged and does not fail the save.
func (r *Resolver) SaveMapping(ctx context.Context, topic, identifier string) (models.MappingOutcome, error) {
	cleanTopic, err := validation.SanitizeInput(topic, validation.DefaultMaxInputLength)
	if err != nil {
		return "", fmt.Errorf("topic: %w", err)
	}
	cleanID, err := validation.SanitizeInput(identifier, validation.DefaultMaxInputLength)
	if err != nil {
		return "", fmt.Errorf("identifier: %w", err)
	}

	outcome, err := r.store.SaveTopicMapping(ctx, cleanTopic, cleanID)
	if err != nil {
		return "", fmt.Errorf("failed to save topic mapping: %w", err)
	}

	r.InvalidateMemo()

	if outcome == models.MappingUpdated {
		if inv, ok := r.store.(ComparisonInvalidator); ok {
			if err := inv.DeleteCachedComparison(ctx, cleanTopic); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("topic", cleanTopic).Msg("Failed to drop cached comparison")
			}
		}
	}

	logging.Ctx(ctx).Info().
		Str("topic", cleanTopic).
		Str("identifier", cleanID).
		Str("outcome", string(outcome)).
		Msg("Topic mapping saved")

	return outcome, nil
}

// SearchIndex returns catalog entries whose normalized key contains the
// normalized query, ordered by identifier. Queries shorter than the minimum
// return an empty result. limit is clamped to [1, max]; <= 0 means default.
func (r *Resolver) SearchIndex(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < r.searchMinQuery {
		return []models.CatalogEntry{}, nil
	}

	key := NormalizedKey(query)
	if key == "" {
		return []models.CatalogEntry{}, nil
	}

	entries, err := r.store.SearchCatalog(ctx, key, r.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return entries, nil
}

func (r *Resolver) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return r.searchDefault
	case limit > r.searchMax:
		return r.searchMax
	default:
		return limit
	}
}

// Stages lists the strategy names in evaluation order.
func (r *Resolver) Stages() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// InvalidateMemo drops all memoised resolutions. Called after a catalog
// sync completes and after a mapping is saved.
func (r *Resolver) InvalidateMemo() {
	r.memo.Clear()
}
