// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package resolver

import (
	"context"

	"github.com/tomtom215/wikithat/internal/models"
)

// Stage names, also used as the resolver_resolutions_total stage label.
const (
	StageMemo            = "memo"
	StageCurated         = "curated"
	StageNormalizedIndex = "normalized_index"
	StageHeuristic       = "heuristic"
)

// Strategy is one stage of the resolution chain. Resolve reports ok=false
// on a miss; errors are treated as misses by the Resolver.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, topic string) (identifier string, ok bool, err error)
}

// MappingLookup reads curated topic mappings.
type MappingLookup interface {
	GetTopicMapping(ctx context.Context, topic string) (*models.TopicMapping, error)
}

// IndexLookup finds catalog identifiers by normalized key.
type IndexLookup interface {
	FindIdentifierByNormalizedKey(ctx context.Context, key string) (string, bool, error)
}

// CuratedStrategy returns the community-curated identifier for an exact topic.
type CuratedStrategy struct {
	store MappingLookup
}

// NewCuratedStrategy creates the curated mapping stage.
func NewCuratedStrategy(store MappingLookup) *CuratedStrategy {
	return &CuratedStrategy{store: store}
}

func (s *CuratedStrategy) Name() string { return StageCurated }

func (s *CuratedStrategy) Resolve(ctx context.Context, topic string) (string, bool, error) {
	m, err := s.store.GetTopicMapping(ctx, topic)
	if err != nil || m == nil || m.CatalogIdentifier == "" {
		return "", false, err
	}
	return m.CatalogIdentifier, true, nil
}

// NormalizedIndexStrategy matches the topic's normalized key against the
// synced catalog. The store picks the lexicographically smallest identifier
// when several entries share a key.
type NormalizedIndexStrategy struct {
	store IndexLookup
}

// NewNormalizedIndexStrategy creates the catalog index stage.
func NewNormalizedIndexStrategy(store IndexLookup) *NormalizedIndexStrategy {
	return &NormalizedIndexStrategy{store: store}
}

func (s *NormalizedIndexStrategy) Name() string { return StageNormalizedIndex }

func (s *NormalizedIndexStrategy) Resolve(ctx context.Context, topic string) (string, bool, error) {
	key := NormalizedKey(topic)
	if key == "" {
		return "", false, nil
	}
	return s.store.FindIdentifierByNormalizedKey(ctx, key)
}

// HeuristicStrategy never misses.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Name() string { return StageHeuristic }

func (HeuristicStrategy) Resolve(_ context.Context, topic string) (string, bool, error) {
	return HeuristicIdentifier(topic), true, nil
}
