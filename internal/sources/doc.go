// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package sources provides clients for the remote collaborators of the
comparison pipeline.

# Clients

  - WikipediaClient: REST page summaries (source A) and opensearch suggestions
  - GrokipediaClient: page backend content for a catalog identifier (source B)
  - VerdictClient: chat completion against an OpenAI-compatible endpoint

Article fetches return models.FetchResult so callers branch on Found,
NotFound and Transient instead of inspecting errors. A 404 is NotFound;
429, 5xx, transport errors and an open circuit breaker are Transient.

# Resilience

Every client has its own Breaker (sony/gobreaker) and outbound rate limiter
(x/time/rate). Breakers open at a 60% failure rate over at least ten
requests and half-open after two minutes. NotFound does not count as a
failure.

# Configuration

GrokipediaClient and VerdictClient return a models.ConfigurationError when
their URL or API key is missing. Callers treat that as "feature disabled"
and keep serving everything else.
*/
package sources
