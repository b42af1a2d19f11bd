// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package ratelimit provides fixed-window per-caller quotas for the expensive
request paths (verdict generation, article scraping, trust votes).

# Stores

A Store performs an atomic increment-and-read of a window counter:

  - MemoryStore: in-process map under a mutex. Expired windows are evicted
    lazily on every call and a key cap evicts the window closest to reset.
  - BadgerStore: read-modify-write inside a badger transaction so several
    processes sharing one directory see one counter. Keys carry a TTL equal
    to the remaining window and RunGC reclaims value-log space.

# Limiters

	store := ratelimit.NewMemoryStore(10000)
	verdicts := ratelimit.NewVerdictLimiter(store, 10, time.Minute)

	d, err := verdicts.Allow(ctx, ratelimit.Key("verdict", ratelimit.ClientIdentity(r)))
	ratelimit.Headers(w, d)
	if !d.Allowed {
	    // 429
	}

The verdict limiter fails closed when the store errors. Limiters built
with NewLimiter fail open and log a warning.
*/
package ratelimit
