// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the api package.

# Available Metrics

HTTP Metrics:
  - http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status
  - http_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - http_requests_in_flight: Active requests (gauge)

Catalog Sync Metrics:
  - catalog_sync_runs_total: Runs by outcome (counter)
    Labels: status (completed, failed)
  - catalog_sync_duration_seconds: Run duration (histogram)
  - catalog_sync_entries_total: Entries processed (counter)
    Labels: result (inserted, skipped)
  - catalog_sync_failed_batches_total: Failed batches and sitemaps (counter)
  - catalog_sync_batch_shrinks_total: Batch halvings after write timeouts (counter)
  - catalog_sync_in_progress: 1 while a sync runs (gauge)
  - catalog_sync_last_success_timestamp: Unix time of last completed sync (gauge)

Resolver and Cache Metrics:
  - resolver_resolutions_total: Resolutions by stage (counter)
    Labels: stage (memo, curated, normalized_index, heuristic)
  - content_cache_lookups_total: Article and verdict lookups (counter)
    Labels: kind, result (hit, miss, stale)
  - cache_hits_total / cache_misses_total: In-process TTL cache (counter)
    Labels: cache_type

Rate Limiter Metrics:
  - ratelimit_decisions_total: Decisions (counter)
    Labels: action, outcome (allowed, denied, fail_open, fail_closed)
  - ratelimit_store_errors_total: Counter store failures (counter)
    Labels: action

External Service and Circuit Breaker Metrics:
  - external_request_duration_seconds: Remote call latency (histogram)
    Labels: service
  - external_requests_total: Remote calls by result (counter)
    Labels: service, result
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
    Labels: name
  - circuit_breaker_requests_total: Requests through a breaker (counter)
    Labels: name, result
  - circuit_breaker_state_transitions_total (counter)
    Labels: name, from_state, to_state

# Usage Example

	start := time.Now()
	result, err := engine.Sync(ctx)
	metrics.RecordSyncRun(time.Since(start), result, err)

# Thread Safety

All Record* helpers are safe for concurrent use.
*/
package metrics
