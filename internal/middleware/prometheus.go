// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
)

// SlowRequestThreshold is the duration above which a request is logged.
const SlowRequestThreshold = time.Second

// unmatchedRoute labels requests that no route matched.
const unmatchedRoute = "unmatched"

// PrometheusMetrics records request count, duration and in-flight gauge.
// The endpoint label is the chi route pattern, so path parameters and
// query strings never create new series.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		endpoint := routePattern(r)
		metrics.RecordAPIRequest(r.Method, endpoint, wrapper.statusCode, duration)

		if duration > SlowRequestThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("endpoint", endpoint).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("Slow request detected")
		}
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// WriteHeader captures the status code
func (rw *metricsResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
