// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/wikithat/internal/models"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Catalog Sync Metrics
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Total number of catalog sync runs by outcome",
		},
		[]string{"status"}, // "completed", "failed"
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Duration of catalog sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	SyncEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_entries_total",
			Help: "Catalog entries processed by sync, by result",
		},
		[]string{"result"}, // "inserted", "skipped"
	)

	SyncFailedBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_sync_failed_batches_total",
			Help: "Batches or sitemaps recorded as failed during sync",
		},
	)

	SyncBatchShrinks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_sync_batch_shrinks_total",
			Help: "Times a batch was halved after a store write timeout",
		},
	)

	SyncInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sync_in_progress",
			Help: "1 while a catalog sync is running",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sync_last_success_timestamp",
			Help: "Unix timestamp of the last completed catalog sync",
		},
	)

	// Resolver Metrics
	ResolverResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_resolutions_total",
			Help: "Topic resolutions by the stage that produced the identifier",
		},
		[]string{"stage"}, // "memo", "curated", "normalized_index", "heuristic"
	)

	// Content Cache Metrics
	ContentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_lookups_total",
			Help: "Content cache lookups by kind and result",
		},
		[]string{"kind", "result"}, // kind: "article", "verdict"; result: "hit", "miss", "stale"
	)

	// In-process cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of in-process cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of in-process cache misses",
		},
		[]string{"cache_type"},
	)

	// Rate Limiter Metrics
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Rate limiter decisions by action and outcome",
		},
		[]string{"action", "outcome"}, // outcome: "allowed", "denied", "fail_open", "fail_closed"
	)

	RateLimitStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_store_errors_total",
			Help: "Rate limit counter store failures",
		},
		[]string{"action"},
	)

	// External Service Metrics
	ExternalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_request_duration_seconds",
			Help:    "Duration of calls to remote services in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service"},
	)

	ExternalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_requests_total",
			Help: "Calls to remote services by result",
		},
		[]string{"service", "result"}, // result: "found", "not_found", "transient", "error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSyncRun records the outcome of one catalog sync run.
func RecordSyncRun(duration time.Duration, result models.SyncResult, err error) {
	SyncDuration.Observe(duration.Seconds())
	SyncEntries.WithLabelValues("inserted").Add(float64(result.Inserted))
	SyncEntries.WithLabelValues("skipped").Add(float64(result.Skipped))
	SyncFailedBatches.Add(float64(len(result.FailedBatches)))

	if err != nil {
		SyncRuns.WithLabelValues("failed").Inc()
		return
	}
	SyncRuns.WithLabelValues("completed").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// SetSyncInProgress flips the in-progress gauge.
func SetSyncInProgress(running bool) {
	if running {
		SyncInProgress.Set(1)
	} else {
		SyncInProgress.Set(0)
	}
}

// RecordBatchShrink counts one halving of a sync batch.
func RecordBatchShrink() {
	SyncBatchShrinks.Inc()
}

// RecordResolution counts a resolution by the stage that answered it.
func RecordResolution(stage string) {
	ResolverResolutions.WithLabelValues(stage).Inc()
}

// RecordContentCacheLookup counts a content cache lookup.
func RecordContentCacheLookup(kind, result string) {
	ContentCacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordCacheAccess counts a hit or miss on an in-process cache.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordRateLimitDecision counts an allow/deny decision for action.
func RecordRateLimitDecision(action string, allowed bool) {
	if allowed {
		RateLimitDecisions.WithLabelValues(action, "allowed").Inc()
	} else {
		RateLimitDecisions.WithLabelValues(action, "denied").Inc()
	}
}

// RecordRateLimitStoreError counts a store failure and how it was resolved.
func RecordRateLimitStoreError(action string, failOpen bool) {
	RateLimitStoreErrors.WithLabelValues(action).Inc()
	if failOpen {
		RateLimitDecisions.WithLabelValues(action, "fail_open").Inc()
	} else {
		RateLimitDecisions.WithLabelValues(action, "fail_closed").Inc()
	}
}

// RecordExternalCall records the latency and result class of a remote call.
func RecordExternalCall(service string, duration time.Duration, err error) {
	ExternalRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
	ExternalRequests.WithLabelValues(service, resultLabel(err)).Inc()
}

// RecordFetchResult records a tagged remote fetch outcome.
func RecordFetchResult(service string, duration time.Duration, kind models.ResultKind) {
	ExternalRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
	ExternalRequests.WithLabelValues(service, kind.String()).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "found"
	case models.IsNotFound(err):
		return "not_found"
	case models.IsTransient(err):
		return "transient"
	case errors.Is(err, models.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
