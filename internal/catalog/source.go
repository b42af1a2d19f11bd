// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/sources"
)

// maxSitemapBytes caps a single sitemap download
const maxSitemapBytes = 64 << 20

const sitemapService = "sitemap"

// SitemapSource lists and downloads sitemaps.
type SitemapSource interface {
	// FetchSitemapIndex returns the child sitemap URLs in index order.
	FetchSitemapIndex(ctx context.Context) ([]string, error)
	// FetchSitemap returns the raw XML of one child sitemap.
	FetchSitemap(ctx context.Context, url string) ([]byte, error)
}

// HTTPSitemapSource fetches sitemaps over HTTP behind a circuit breaker,
// retrying transient failures with exponential backoff.
type HTTPSitemapSource struct {
	client     *http.Client
	indexURL   string
	userAgent  string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	breaker    *sources.Breaker
}

// NewHTTPSitemapSource creates a sitemap source from catalog settings.
func NewHTTPSitemapSource(cfg *config.CatalogConfig) *HTTPSitemapSource {
	s := &HTTPSitemapSource{
		// Per-attempt deadlines come from the request context.
		client:     &http.Client{},
		indexURL:   cfg.SitemapIndexURL,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.FetchTimeout,
		retries:    cfg.FetchRetries,
		retryDelay: cfg.FetchRetryDelay,
		breaker:    sources.NewBreaker("sitemap-fetch"),
	}
	if s.userAgent == "" {
		s.userAgent = sources.DefaultUserAgent
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.retries <= 0 {
		s.retries = 1
	}
	if s.retryDelay <= 0 {
		s.retryDelay = time.Second
	}
	return s
}

// FetchSitemapIndex downloads and parses the sitemap index.
func (s *HTTPSitemapSource) FetchSitemapIndex(ctx context.Context) ([]string, error) {
	data, err := s.FetchSitemap(ctx, s.indexURL)
	if err != nil {
		return nil, err
	}
	return ParseSitemapIndex(data)
}

// FetchSitemap downloads one sitemap. Transient failures are retried;
// a 404 is returned immediately as models.NotFoundError.
func (s *HTTPSitemapSource) FetchSitemap(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := retryWithBackoff(ctx, s.retries, s.retryDelay, func() error {
		var err error
		data, err = sources.Execute(s.breaker, func() ([]byte, error) {
			return s.get(ctx, url)
		})
		return err
	})
	return data, err
}

func (s *HTTPSitemapSource) get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	data, err := s.doGet(ctx, url)
	metrics.RecordExternalCall(sitemapService, time.Since(start), err)
	return data, err
}

func (s *HTTPSitemapSource) doGet(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create sitemap request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, sources.TransportError(ctx, "fetch sitemap", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Str("url", url).Msg("Failed to close sitemap response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.StatusError("fetch sitemap", url, resp, "sitemap", url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, sources.TransportError(ctx, "read sitemap", url, err)
	}
	return data, nil
}

// retryWithBackoff runs fn up to attempts times, doubling delay after each
// transient failure. Non-transient errors are returned immediately. The
// wait between attempts is cancellable.
func retryWithBackoff(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil || !models.IsTransient(err) {
			return err
		}

		if attempt < attempts-1 {
			logging.Ctx(ctx).Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", attempts).Dur("delay", delay).Msg("Retry attempt")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}
