// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging
    context with request_id and correlation_id
  - PrometheusMetrics: request totals, duration histogram and in-flight
    gauge, labelled by chi route pattern; slow requests are logged

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Per-caller quotas for the expensive actions are not middleware; they live
in internal/ratelimit and are applied by the handlers that need them.
*/
package middleware
