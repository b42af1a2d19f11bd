// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset or missing.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wikithat/config.yaml",
	"/etc/wikithat/config.yml",
}

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig is the bottom layer of LoadWithKoanf.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			SitemapIndexURL:   "https://assets.grokipedia.com/sitemap/sitemap-index.xml",
			PagePrefix:        "https://grokipedia.com/page/",
			UserAgent:         "Wikithat.com/1.0",
			BatchSize:         1000,
			MinBatchSize:      100,
			MaxShrinkAttempts: 4,
			RetryBatchSize:    50,
			BatchDelay:        100 * time.Millisecond,
			RetryDelay:        200 * time.Millisecond,
			SyncInterval:      24 * time.Hour,
			SyncOnStart:       false,
			Workers:           4,
			FetchTimeout:      30 * time.Second,
			FetchRetries:      3,
			FetchRetryDelay:   time.Second,
		},
		Resolver: ResolverConfig{
			MemoTTL:            10 * time.Minute,
			SearchDefaultLimit: 20,
			SearchMaxLimit:     100,
			SearchMinQuery:     2,
		},
		Cache: CacheConfig{
			VerdictFreshness: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Limit:      10,
			Window:     60 * time.Second,
			Store:      "memory",
			BadgerPath: "/data/ratelimit",
			MaxKeys:    100000,
			GCInterval: 10 * time.Minute,
		},
		Wikipedia: WikipediaConfig{
			RESTURL:   "https://en.wikipedia.org/api/rest_v1",
			ActionURL: "https://en.wikipedia.org/w/api.php",
			UserAgent: "Wikithat.com/1.0",
			Timeout:   10 * time.Second,
			RPS:       20,
		},
		Grokipedia: GrokipediaConfig{
			APIURL:       "",
			APIKey:       "",
			Timeout:      15 * time.Second,
			ExtractChars: 1000,
			RPS:          10,
		},
		XAI: XAIConfig{
			BaseURL:     "https://api.x.ai/v1",
			Model:       "grok-4-1-fast-reasoning",
			Temperature: 0.7,
			MaxTokens:   1500,
			Timeout:     60 * time.Second,
		},
		Database: DatabaseConfig{
			Path:               "/data/wikithat.duckdb",
			MaxMemory:          "1GB",
			Threads:            0,
			CheckpointInterval: 30 * time.Minute,
		},
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers defaults, the first config file found and mapped
// environment variables, later layers winning, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	// SITEMAP_INDEX_URL -> catalog.sitemap_index_url
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns $CONFIG_PATH if it exists, else the first existing
// entry of DefaultConfigPaths, else "".
func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// listPaths hold []string settings; their env values are comma separated.
var listPaths = map[string]bool{
	"security.cors_origins": true,
}

// envValue maps an environment variable to its koanf path and value.
// Unmapped variables yield an empty key and are skipped.
func envValue(key, value string) (string, interface{}) {
	path := envTransformFunc(key)
	if path == "" || !listPaths[path] {
		return path, value
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return "", nil
	}
	return path, items
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Catalog sync
	"sitemap_index_url":        "catalog.sitemap_index_url",
	"catalog_page_prefix":      "catalog.page_prefix",
	"catalog_user_agent":       "catalog.user_agent",
	"sync_batch_size":          "catalog.batch_size",
	"sync_min_batch_size":      "catalog.min_batch_size",
	"sync_max_shrink_attempts": "catalog.max_shrink_attempts",
	"sync_retry_batch_size":    "catalog.retry_batch_size",
	"sync_batch_delay":         "catalog.batch_delay",
	"sync_retry_delay":         "catalog.retry_delay",
	"sync_interval":            "catalog.sync_interval",
	"sync_on_start":            "catalog.sync_on_start",
	"sync_workers":             "catalog.workers",
	"sync_fetch_timeout":       "catalog.fetch_timeout",
	"sync_fetch_retries":       "catalog.fetch_retries",
	"sync_fetch_retry_delay":   "catalog.fetch_retry_delay",

	// Resolver
	"resolver_memo_ttl":    "resolver.memo_ttl",
	"search_default_limit": "resolver.search_default_limit",
	"search_max_limit":     "resolver.search_max_limit",
	"search_min_query":     "resolver.search_min_query",

	// Content cache
	"verdict_freshness": "cache.verdict_freshness",

	// Rate limiter
	"rate_limit_per_window":   "rate_limit.limit",
	"rate_limit_quota_window": "rate_limit.window",
	"rate_limit_store":        "rate_limit.store",
	"rate_limit_badger_path":  "rate_limit.badger_path",
	"rate_limit_max_keys":     "rate_limit.max_keys",
	"rate_limit_gc_interval":  "rate_limit.gc_interval",

	// Wikipedia
	"wikipedia_rest_url":   "wikipedia.rest_url",
	"wikipedia_action_url": "wikipedia.action_url",
	"wikipedia_user_agent": "wikipedia.user_agent",
	"wikipedia_timeout":    "wikipedia.timeout",
	"wikipedia_rps":        "wikipedia.rps",

	// Grokipedia
	"grokipedia_api_url":       "grokipedia.api_url",
	"grokipedia_api_key":       "grokipedia.api_key",
	"grokipedia_timeout":       "grokipedia.timeout",
	"grokipedia_extract_chars": "grokipedia.extract_chars",
	"grokipedia_rps":           "grokipedia.rps",

	// xAI
	"xai_api_key":     "xai.api_key",
	"xai_base_url":    "xai.base_url",
	"xai_model":       "xai.model",
	"xai_temperature": "xai.temperature",
	"xai_max_tokens":  "xai.max_tokens",
	"xai_timeout":     "xai.timeout",

	// Database
	"duckdb_path":                "database.path",
	"duckdb_max_memory":          "database.max_memory",
	"duckdb_threads":             "database.threads",
	"duckdb_checkpoint_interval": "database.checkpoint_interval",
	"duckdb_profiling":           "database.profiling",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
