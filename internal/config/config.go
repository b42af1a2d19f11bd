// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Catalog and sources:
//     - Catalog: Sitemap index location and batched sync tuning
//     - Wikipedia: REST summary and opensearch endpoints
//     - Grokipedia: Backend page API used for article content
//     - XAI: OpenAI-compatible chat endpoint used for verdicts
//
//  2. Pipeline:
//     - Resolver: Memo TTL and search limits
//     - Cache: Verdict freshness window
//     - RateLimit: Per-caller quota and backing store
//
//  3. Infrastructure:
//     - Database: DuckDB configuration
//     - Server: HTTP server configuration
//     - Security: CORS and blanket per-IP request limits
//     - Logging: Log levels and output formats
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Catalog    CatalogConfig    `koanf:"catalog"`
	Resolver   ResolverConfig   `koanf:"resolver"`
	Cache      CacheConfig      `koanf:"cache"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Wikipedia  WikipediaConfig  `koanf:"wikipedia"`
	Grokipedia GrokipediaConfig `koanf:"grokipedia"`
	XAI        XAIConfig        `koanf:"xai"`
	Database   DatabaseConfig   `koanf:"database"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// CatalogConfig holds sitemap sync settings.
//
// Environment Variables:
//   - SITEMAP_INDEX_URL: Sitemap-of-sitemaps location
//   - CATALOG_PAGE_PREFIX: URL prefix stripped from each <loc> to get the identifier
//   - SYNC_BATCH_SIZE: Upsert batch size (default: 1000)
//   - SYNC_MIN_BATCH_SIZE: Floor for batch halving on store timeouts (default: 100)
//   - SYNC_RETRY_BATCH_SIZE: Batch size for the failed-batch retry pass (default: 50)
//   - SYNC_RETRY_DELAY: Delay between batches in the retry pass (default: 200ms)
//   - SYNC_INTERVAL: Periodic sync interval, 0 disables the schedule (default: 24h)
//   - SYNC_WORKERS: Concurrent sitemap fetches (default: 4)
//   - SYNC_FETCH_TIMEOUT: Per-sitemap fetch timeout (default: 30s)
type CatalogConfig struct {
	SitemapIndexURL   string        `koanf:"sitemap_index_url"`
	PagePrefix        string        `koanf:"page_prefix"`
	UserAgent         string        `koanf:"user_agent"`
	BatchSize         int           `koanf:"batch_size"`
	MinBatchSize      int           `koanf:"min_batch_size"`
	MaxShrinkAttempts int           `koanf:"max_shrink_attempts"`
	RetryBatchSize    int           `koanf:"retry_batch_size"`
	BatchDelay        time.Duration `koanf:"batch_delay"`
	RetryDelay        time.Duration `koanf:"retry_delay"`
	SyncInterval      time.Duration `koanf:"sync_interval"`
	SyncOnStart       bool          `koanf:"sync_on_start"`
	Workers           int           `koanf:"workers"`
	FetchTimeout      time.Duration `koanf:"fetch_timeout"`
	FetchRetries      int           `koanf:"fetch_retries"`
	FetchRetryDelay   time.Duration `koanf:"fetch_retry_delay"`
}

// ResolverConfig holds identifier resolution settings.
type ResolverConfig struct {
	MemoTTL            time.Duration `koanf:"memo_ttl"`
	SearchDefaultLimit int           `koanf:"search_default_limit"`
	SearchMaxLimit     int           `koanf:"search_max_limit"`
	SearchMinQuery     int           `koanf:"search_min_query"`
}

// CacheConfig holds content cache settings.
type CacheConfig struct {
	// VerdictFreshness is the maximum age at which a stored verdict is served.
	// Default: 168h (7 days)
	VerdictFreshness time.Duration `koanf:"verdict_freshness"`
}

// RateLimitConfig holds per-caller quota settings for the expensive paths.
//
// Environment Variables:
//   - RATE_LIMIT_PER_WINDOW: Calls allowed per window (default: 10)
//   - RATE_LIMIT_QUOTA_WINDOW: Window length (default: 60s)
//   - RATE_LIMIT_STORE: memory or badger (default: memory)
//   - RATE_LIMIT_BADGER_PATH: Badger directory when store=badger
type RateLimitConfig struct {
	Limit      int           `koanf:"limit"`
	Window     time.Duration `koanf:"window"`
	Store      string        `koanf:"store"`
	BadgerPath string        `koanf:"badger_path"`
	MaxKeys    int           `koanf:"max_keys"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// WikipediaConfig holds settings for the Wikipedia REST and action APIs.
type WikipediaConfig struct {
	RESTURL   string        `koanf:"rest_url"`
	ActionURL string        `koanf:"action_url"`
	UserAgent string        `koanf:"user_agent"`
	Timeout   time.Duration `koanf:"timeout"`
	RPS       float64       `koanf:"rps"`
}

// GrokipediaConfig holds settings for the Grokipedia backend page API.
//
// Environment Variables:
//   - GROKIPEDIA_API_URL: Backend base URL (empty disables article B fetches)
//   - GROKIPEDIA_API_KEY: Value for the X-API-Key header
type GrokipediaConfig struct {
	APIURL       string        `koanf:"api_url"`
	APIKey       string        `koanf:"api_key"`
	Timeout      time.Duration `koanf:"timeout"`
	ExtractChars int           `koanf:"extract_chars"`
	RPS          float64       `koanf:"rps"`
}

// XAIConfig holds settings for verdict generation.
//
// Environment Variables:
//   - XAI_API_KEY: API key (empty disables the verdict path)
//   - XAI_BASE_URL: OpenAI-compatible base URL (default: https://api.x.ai/v1)
//   - XAI_MODEL: Chat model name
type XAIConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model"`
	Temperature float32       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path               string        `koanf:"path"`
	MaxMemory          string        `koanf:"max_memory"`
	Threads            int           `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
	Profiling          bool          `koanf:"profiling"` // PRAGMA enable_profiling on open
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds CORS and blanket request limit settings.
// The blanket limit guards every route; the per-action quotas live in RateLimitConfig.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// VerdictEnabled reports whether the verdict generator has credentials.
func (c *Config) VerdictEnabled() bool {
	return c.XAI.APIKey != ""
}

// GrokipediaEnabled reports whether article B fetches are configured.
func (c *Config) GrokipediaEnabled() bool {
	return c.Grokipedia.APIURL != ""
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
