// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/wikithat/internal/metrics"
)

const (
	// DefaultMaxEntries bounds a Cache created with maxEntries <= 0.
	DefaultMaxEntries = 10000

	cleanupInterval = 5 * time.Minute
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe in-process map with per-entry expiration.
// Expired entries are dropped on access and by a sweep that runs inside Set
// at most once per cleanup interval.
type Cache[V any] struct {
	name       string
	mu         sync.Mutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	stats      Stats
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache whose entries live for ttl. name labels the
// cache_hits_total and cache_misses_total series.
//
// Example:
//
//	memo := cache.New[string]("resolver_memo", time.Hour, 0)
//	memo.Set("albert einstein", "Albert_Einstein")
//	if id, ok := memo.Get("albert einstein"); ok {
//	    return id
//	}
func New[V any](name string, ttl time.Duration, maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache[V]{
		name:       name,
		entries:    make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		stats:      Stats{LastCleanup: time.Now()},
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.stats.Evictions++
		ok = false
	}

	if !ok {
		c.stats.Misses++
		metrics.RecordCacheAccess(c.name, false)
		var zero V
		return zero, false
	}

	c.stats.Hits++
	metrics.RecordCacheAccess(c.name, true)
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL. A full cache first
// drops expired entries and then, if still full, the entry closest to expiry.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.stats.LastCleanup) >= cleanupInterval {
		c.cleanupLocked(now)
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.cleanupLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictSoonestLocked()
		}
	}

	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}
	c.stats.TotalKeys = int64(len(c.entries))
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]entry[V])
	c.stats.TotalKeys = 0
}

// Len returns the number of stored entries, including any not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache statistics.
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache[V]) cleanupLocked(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
}

func (c *Cache[V]) evictSoonestLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, e := range c.entries {
		if !found || e.expiresAt.Before(soonest) {
			victim, soonest, found = key, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
		c.stats.Evictions++
	}
}
