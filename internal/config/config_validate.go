// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateCatalog,
		c.validateResolver,
		c.validateCache,
		c.validateRateLimit,
		c.validateSources,
		c.validateDatabase,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateCatalog validates sitemap sync settings
func (c *Config) validateCatalog() error {
	if c.Catalog.SitemapIndexURL == "" {
		return fmt.Errorf("SITEMAP_INDEX_URL is required")
	}
	if err := validateAbsoluteURL(c.Catalog.SitemapIndexURL, "SITEMAP_INDEX_URL"); err != nil {
		return err
	}
	if c.Catalog.BatchSize < 1 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be positive")
	}
	if c.Catalog.MinBatchSize < 1 || c.Catalog.MinBatchSize > c.Catalog.BatchSize {
		return fmt.Errorf("SYNC_MIN_BATCH_SIZE must be between 1 and SYNC_BATCH_SIZE (%d)", c.Catalog.BatchSize)
	}
	if c.Catalog.RetryBatchSize < 1 {
		return fmt.Errorf("SYNC_RETRY_BATCH_SIZE must be positive")
	}
	if c.Catalog.MaxShrinkAttempts < 0 {
		return fmt.Errorf("SYNC_MAX_SHRINK_ATTEMPTS must not be negative")
	}
	if c.Catalog.Workers < 1 || c.Catalog.Workers > 64 {
		return fmt.Errorf("SYNC_WORKERS must be between 1 and 64")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("SYNC_FETCH_TIMEOUT must be positive")
	}
	if c.Catalog.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative")
	}
	return nil
}

// validateResolver validates search bounds
func (c *Config) validateResolver() error {
	if c.Resolver.SearchMaxLimit < 1 {
		return fmt.Errorf("SEARCH_MAX_LIMIT must be positive")
	}
	if c.Resolver.SearchDefaultLimit < 1 || c.Resolver.SearchDefaultLimit > c.Resolver.SearchMaxLimit {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be between 1 and SEARCH_MAX_LIMIT (%d)", c.Resolver.SearchMaxLimit)
	}
	if c.Resolver.SearchMinQuery < 0 {
		return fmt.Errorf("SEARCH_MIN_QUERY must not be negative")
	}
	return nil
}

// validateCache validates the verdict freshness window
func (c *Config) validateCache() error {
	if c.Cache.VerdictFreshness <= 0 {
		return fmt.Errorf("VERDICT_FRESHNESS must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validRateLimitStores defines the allowed quota backends
var validRateLimitStores = map[string]bool{
	"memory": true,
	"badger": true,
}

// validateRateLimit validates per-action quota settings
func (c *Config) validateRateLimit() error {
	rl := c.RateLimit
	if rl.Limit < minRateLimitRequests || rl.Limit > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_PER_WINDOW must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if rl.Window < minRateLimitWindow || rl.Window > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_QUOTA_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	if !validRateLimitStores[rl.Store] {
		return fmt.Errorf("RATE_LIMIT_STORE must be one of: memory, badger")
	}
	if rl.Store == "badger" && rl.BadgerPath == "" {
		return fmt.Errorf("RATE_LIMIT_BADGER_PATH is required when RATE_LIMIT_STORE=badger")
	}
	if rl.MaxKeys < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX_KEYS must be positive")
	}
	return nil
}

// validateSources validates remote API endpoints. Credentials are optional:
// a missing key disables only the component that needs it.
func (c *Config) validateSources() error {
	if err := validateAbsoluteURL(c.Wikipedia.RESTURL, "WIKIPEDIA_REST_URL"); err != nil {
		return err
	}
	if err := validateAbsoluteURL(c.Wikipedia.ActionURL, "WIKIPEDIA_ACTION_URL"); err != nil {
		return err
	}
	if c.Grokipedia.APIURL != "" {
		if err := validateHTTPURL(c.Grokipedia.APIURL, "GROKIPEDIA_API_URL"); err != nil {
			return err
		}
	}
	if c.Grokipedia.ExtractChars < 1 {
		return fmt.Errorf("GROKIPEDIA_EXTRACT_CHARS must be positive")
	}
	if err := validateAbsoluteURL(c.XAI.BaseURL, "XAI_BASE_URL"); err != nil {
		return err
	}
	if c.XAI.MaxTokens < 1 {
		return fmt.Errorf("XAI_MAX_TOKENS must be positive")
	}
	if c.XAI.Temperature < 0 || c.XAI.Temperature > 2 {
		return fmt.Errorf("XAI_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// validateDatabase validates DuckDB settings
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// validateSecurity validates the blanket request limit
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS returns true when production runs with wildcard CORS
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed zerolog levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
