// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package config provides centralized configuration management for Wikithat.

Configuration is layered with Koanf v2. Built-in defaults come first, then an
optional YAML file (CONFIG_PATH, config.yaml or /etc/wikithat/config.yaml),
then environment variables. Only environment variables listed in the explicit
mapping table are read.

# Configuration Structure

  - CatalogConfig: sitemap index location, batch sizes, retry pacing, schedule
  - ResolverConfig: memo TTL and search limits
  - CacheConfig: verdict freshness window
  - RateLimitConfig: per-caller quota and its store (memory or badger)
  - WikipediaConfig, GrokipediaConfig, XAIConfig: remote collaborators
  - DatabaseConfig: DuckDB path and tuning
  - ServerConfig, SecurityConfig, LoggingConfig: process surface

# Environment Variables

Catalog sync:
  - SITEMAP_INDEX_URL, CATALOG_PAGE_PREFIX
  - SYNC_BATCH_SIZE (1000), SYNC_MIN_BATCH_SIZE (100), SYNC_RETRY_BATCH_SIZE (50)
  - SYNC_RETRY_DELAY (200ms), SYNC_INTERVAL (24h), SYNC_WORKERS (4)

Remote collaborators:
  - GROKIPEDIA_API_URL, GROKIPEDIA_API_KEY
  - XAI_API_KEY, XAI_BASE_URL, XAI_MODEL

Quota:
  - RATE_LIMIT_PER_WINDOW (10), RATE_LIMIT_QUOTA_WINDOW (60s)
  - RATE_LIMIT_STORE (memory|badger), RATE_LIMIT_BADGER_PATH

Infrastructure:
  - DUCKDB_PATH, HTTP_PORT, HTTP_HOST, CORS_ORIGINS, LOG_LEVEL, LOG_FORMAT

Missing XAI or Grokipedia credentials are not a load error. The affected
component reports a configuration error when used and everything else runs.
*/
package config
