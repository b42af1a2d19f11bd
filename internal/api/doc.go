// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package api provides the HTTP surface of Wikithat.

Routes are served by a chi router with a blanket per-IP limit from
go-chi/httprate and CORS from go-chi/cors. The expensive actions (verdict,
trust vote, article scrape) additionally go through the per-caller quotas in
internal/ratelimit, applied inside the compare service; their decisions are
echoed as X-RateLimit-* headers.

Endpoints:

	GET  /api/v1/health, /health/live, /health/ready
	GET  /api/v1/resolve?topic=
	GET  /api/v1/topic-mapping?q=
	POST /api/v1/topic-mapping          {wikipediaTopic, grokipediaSlug}
	GET  /api/v1/suggest?q=             Wikipedia title suggestions
	GET  /api/v1/compare?topic=
	POST /api/v1/verdict                {topic}
	GET  /api/v1/trust-vote?topic=
	POST /api/v1/trust-vote             {topic, source}
	GET  /api/v1/grokipedia/article?slug=
	GET  /api/v1/slugs/check?slug=
	POST /api/v1/slugs/check            {slugs: [...]}
	GET  /api/v1/sync/status
	POST /api/v1/sync/trigger
	GET  /metrics

Responses use the envelope in response.go:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "TOO_MANY_REQUESTS", "message": "..."}}

Service errors are mapped to status codes in errors.go.
*/
package api
