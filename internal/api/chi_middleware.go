// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/ratelimit"
)

// ChiMiddlewareConfig holds configuration for the router-wide middleware.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         int // seconds

	// Blanket per-client limit applied to every API route
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// HealthRateLimit is the more permissive blanket limit on health probes.
var HealthRateLimit = struct {
	Requests int
	Window   time.Duration
}{Requests: 1000, Window: time.Minute}

// DefaultChiMiddlewareConfig returns the defaults. CORS origins are empty,
// so cross-origin browsers are refused until configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		CORSExposedHeaders: []string{"X-Request-ID", "X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		CORSMaxAge:         86400,

		RateLimitRequests: 300,
		RateLimitWindow:   time.Minute,
	}
}

// ChiMiddlewareConfigFrom builds the middleware config from SecurityConfig.
func ChiMiddlewareConfigFrom(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	if sec == nil {
		return cfg
	}
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	if sec.RateLimitReqs > 0 {
		cfg.RateLimitRequests = sec.RateLimitReqs
	}
	if sec.RateLimitWindow > 0 {
		cfg.RateLimitWindow = sec.RateLimitWindow
	}
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	return cfg
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}

	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: cfg.CORSAllowedMethods,
			AllowedHeaders: cfg.CORSAllowedHeaders,
			ExposedHeaders: cfg.CORSExposedHeaders,
			MaxAge:         cfg.CORSMaxAge,
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the blanket per-client limiter for API routes.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// RateLimitHealth returns the permissive limiter for health probes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit(HealthRateLimit.Requests, HealthRateLimit.Window)
}

func (m *ChiMiddleware) limit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(clientKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).TooManyRequests("Too many requests, slow down", time.Time{})
		}),
	)
}

// clientKey keys the blanket limiter by the same caller identity the
// per-action quotas use.
func clientKey(r *http.Request) (string, error) {
	return ratelimit.ClientIdentity(r), nil
}

// APISecurityHeaders adds the standard hardening headers to API responses.
// HSTS is only sent over TLS or behind a TLS-terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
