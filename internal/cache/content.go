// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
)

// DefaultVerdictFreshness is the maximum age of a verdict that is served.
const DefaultVerdictFreshness = 7 * 24 * time.Hour

// sharedWorkTimeout bounds a collapsed fetch or generation once it no longer
// follows the cancellation of the caller that started it.
const sharedWorkTimeout = 2 * time.Minute

// ContentStore persists fetched articles and generated verdicts.
// Get methods return nil without error on a miss.
type ContentStore interface {
	GetCachedArticle(ctx context.Context, topic string, source models.Source) (*models.CachedArticle, error)
	PutCachedArticle(ctx context.Context, a models.CachedArticle) error
	GetCachedVerdict(ctx context.Context, topic string) (*models.CachedVerdict, error)
	PutCachedVerdict(ctx context.Context, v models.CachedVerdict) error
}

// ArticleFetcher retrieves an article from its remote source.
type ArticleFetcher func(ctx context.Context) models.FetchResult[models.Article]

// VerdictGenerator produces a fresh verdict for a topic.
type VerdictGenerator func(ctx context.Context) (string, error)

// ContentCache serves articles permanently and verdicts within a freshness
// window, calling the supplied fetcher or generator on a miss. Identical
// concurrent misses in this process share one upstream call.
type ContentCache struct {
	store     ContentStore
	freshness time.Duration
	now       func() time.Time
	flight    singleflight.Group
}

// NewContentCache creates a content cache over store.
func NewContentCache(store ContentStore, cfg *config.CacheConfig) *ContentCache {
	freshness := DefaultVerdictFreshness
	if cfg != nil && cfg.VerdictFreshness > 0 {
		freshness = cfg.VerdictFreshness
	}
	return &ContentCache{
		store:     store,
		freshness: freshness,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *ContentCache) SetClock(now func() time.Time) {
	c.now = now
}

// Freshness returns the verdict freshness window.
func (c *ContentCache) Freshness() time.Duration {
	return c.freshness
}

// GetOrFetch returns the cached article for (topic, source), fetching and
// storing it on a miss. NotFound yields (nil, nil); Transient yields
// (nil, err). Neither is cached. A failed store write is logged and the
// fetched article is still returned.
func (c *ContentCache) GetOrFetch(ctx context.Context, topic string, source models.Source, fetch ArticleFetcher) (*models.Article, error) {
	log := logging.Ctx(ctx)

	cached, err := c.store.GetCachedArticle(ctx, topic, source)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("source", string(source)).Msg("Article cache read failed, fetching")
	} else if cached != nil {
		metrics.RecordContentCacheLookup("article", "hit")
		article := cached.Article
		return &article, nil
	}
	metrics.RecordContentCacheLookup("article", "miss")

	key := fmt.Sprintf("article\x00%s\x00%s", source, topic)
	v, err := c.share(ctx, key, func(ctx context.Context) (interface{}, error) {
		res := fetch(ctx)
		switch res.Kind {
		case models.KindFound:
			c.storeArticle(ctx, topic, source, res.Value)
			article := res.Value
			return &article, nil
		case models.KindTransient:
			return nil, res.Err
		default:
			return nil, nil
		}
	})
	if err != nil {
		return nil, err
	}
	article, _ := v.(*models.Article)
	if article == nil {
		return nil, nil
	}
	out := *article
	return &out, nil
}

// share runs fn once per key across concurrent callers. The work runs on a
// context detached from any single caller, so one caller going away does not
// fail the others; each caller still returns early on its own cancellation.
func (c *ContentCache) share(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedWorkTimeout)
		defer cancel()
		return fn(workCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *ContentCache) storeArticle(ctx context.Context, topic string, source models.Source, a models.Article) {
	err := c.store.PutCachedArticle(ctx, models.CachedArticle{
		Topic:     topic,
		Source:    source,
		Article:   a,
		UpdatedAt: c.now().UTC(),
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", topic).Str("source", string(source)).Msg("Failed to cache article")
	}
}

// GetOrGenerateVerdict returns a verdict for topic no older than the freshness
// window, generating and storing a new one otherwise. The bool reports
// whether the verdict came from the cache. Generator errors propagate and
// nothing is stored.
func (c *ContentCache) GetOrGenerateVerdict(ctx context.Context, topic string, generate VerdictGenerator) (string, bool, error) {
	log := logging.Ctx(ctx)

	cached, err := c.store.GetCachedVerdict(ctx, topic)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("topic", topic).Msg("Verdict cache read failed, generating")
	case cached != nil && cached.FreshAt(c.now(), c.freshness):
		metrics.RecordContentCacheLookup("verdict", "hit")
		return cached.Verdict, true, nil
	case cached != nil:
		metrics.RecordContentCacheLookup("verdict", "stale")
	default:
		metrics.RecordContentCacheLookup("verdict", "miss")
	}

	v, err := c.share(ctx, "verdict\x00"+topic, func(ctx context.Context) (interface{}, error) {
		verdict, err := generate(ctx)
		if err != nil {
			return "", err
		}

		err = c.store.PutCachedVerdict(ctx, models.CachedVerdict{
			Topic:     topic,
			Verdict:   verdict,
			CreatedAt: c.now().UTC(),
		})
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Failed to cache verdict")
		}
		return verdict, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}
