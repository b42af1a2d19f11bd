// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package cache provides the persistent content cache and a small in-process
TTL map.

# Content Cache

ContentCache sits in front of the remote article sources and the verdict
generator:

  - Articles are keyed by (topic, source) and never expire. Only found
    articles are stored; not-found and transient results are returned to
    the caller and retried on the next request.
  - Verdicts are keyed by topic and served while younger than the freshness
    window (7 days by default). A stale or missing verdict is regenerated and
    the row overwritten.

Identical misses that arrive concurrently are collapsed with
golang.org/x/sync/singleflight. Stored rows are written with idempotent
upserts, so separate processes racing on the same key still converge.

# TTL Cache

Cache[V] is a generic thread-safe map with per-entry expiration and a size
bound, used by the resolver to memoise topic resolutions:

	memo := cache.New[string]("resolver_memo", time.Hour, 0)
	memo.Set(key, identifier)
	memo.Clear() // after a sync or a saved mapping

Hits and misses are exported as cache_hits_total and cache_misses_total
labelled by cache name.
*/
package cache
