// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Catalog.BatchSize = 0 },
			wantErr: "SYNC_BATCH_SIZE",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Catalog.Workers = 100 },
			wantErr: "SYNC_WORKERS",
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Catalog.SyncInterval = -time.Second },
			wantErr: "SYNC_INTERVAL",
		},
		{
			name:    "badger without path",
			mutate:  func(c *Config) { c.RateLimit.Store = "badger"; c.RateLimit.BadgerPath = "" },
			wantErr: "RATE_LIMIT_BADGER_PATH",
		},
		{
			name:    "window too short",
			mutate:  func(c *Config) { c.RateLimit.Window = time.Millisecond },
			wantErr: "RATE_LIMIT_QUOTA_WINDOW",
		},
		{
			name:    "grokipedia url with path",
			mutate:  func(c *Config) { c.Grokipedia.APIURL = "https://backend.example/api" },
			wantErr: "GROKIPEDIA_API_URL",
		},
		{
			name:    "zero verdict freshness",
			mutate:  func(c *Config) { c.Cache.VerdictFreshness = 0 },
			wantErr: "VERDICT_FRESHNESS",
		},
		{
			name:    "default search limit above max",
			mutate:  func(c *Config) { c.Resolver.SearchDefaultLimit = 500 },
			wantErr: "SEARCH_DEFAULT_LIMIT",
		},
		{
			name:    "blanket limit ignored when disabled",
			mutate:  func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.RateLimitReqs = 0 },
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	cfg := defaultConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("development mode should not warn about wildcard CORS")
	}

	cfg.Server.Environment = "production"
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("production with wildcard CORS should warn")
	}

	cfg.Security.CORSOrigins = []string{"https://wikithat.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://backend.example", false},
		{"http://localhost:8000/", false},
		{"https://backend.example/api", true},
		{"https://backend.example?x=1", true},
		{"ftp://backend.example", true},
		{"backend.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateHTTPURL(tt.url, "TEST_URL")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
