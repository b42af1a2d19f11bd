// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
)

// Grokipedia defaults.
const (
	GrokipediaPageBase         = "https://grokipedia.com/page/"
	DefaultGrokipediaExtract   = 1000
	grokipediaService          = "grokipedia"
	grokipediaUnrenderedNotice = "Content not available via scraping. Grokipedia requires JavaScript rendering for full content. The page exists - visit directly to view."
)

type grokipediaPage struct {
	Title       string `json:"title"`
	ContentText string `json:"content_text"`
	URL         string `json:"url"`
}

// GrokipediaClient fetches article content from the Grokipedia page backend.
type GrokipediaClient struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	extractChars int
	limiter      *rate.Limiter
	breaker      *Breaker
}

// NewGrokipediaClient creates a client from cfg. It returns a
// models.ConfigurationError when no backend URL is configured.
func NewGrokipediaClient(cfg *config.GrokipediaConfig) (*GrokipediaClient, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, &models.ConfigurationError{Component: "grokipedia client", Setting: "GROKIPEDIA_API_URL"}
	}

	c := &GrokipediaClient{
		client:       NewHTTPClient(cfg.Timeout),
		baseURL:      strings.TrimRight(cfg.APIURL, "/"),
		apiKey:       cfg.APIKey,
		extractChars: cfg.ExtractChars,
		limiter:      newOutboundLimiter(cfg.RPS),
		breaker:      NewBreaker("grokipedia-api"),
	}
	if c.extractChars <= 0 {
		c.extractChars = DefaultGrokipediaExtract
	}
	return c, nil
}

// PageURL returns the public page URL for identifier.
func PageURL(identifier string) string {
	return GrokipediaPageBase + url.PathEscape(identifier)
}

// FetchArticleContent fetches the article for a catalog identifier. The
// extract is truncated to the configured number of characters.
func (c *GrokipediaClient) FetchArticleContent(ctx context.Context, identifier string) models.FetchResult[models.Article] {
	endpoint := c.baseURL + "/page/" + url.PathEscape(identifier)

	start := time.Now()
	article, err := Execute(c.breaker, func() (*models.Article, error) {
		return c.fetchPage(ctx, endpoint, identifier)
	})
	res := toResult(article, err, "grokipedia page", endpoint)
	metrics.RecordFetchResult(grokipediaService, time.Since(start), res.Kind)

	if res.Kind == models.KindTransient {
		logging.Ctx(ctx).Warn().Err(res.Err).Str("identifier", identifier).Msg("Grokipedia fetch failed")
	}
	return res
}

func (c *GrokipediaClient) fetchPage(ctx context.Context, endpoint, identifier string) (*models.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, TransportError(ctx, "grokipedia page", endpoint, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Msg("Failed to close Grokipedia response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError("grokipedia page", endpoint, resp, "grokipedia article", identifier)
	}

	var page grokipediaPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode grokipedia page: %w", err)
	}

	a := &models.Article{
		Title:   page.Title,
		Extract: strings.TrimSpace(page.ContentText),
		URL:     page.URL,
	}
	if a.Title == "" {
		a.Title = strings.ReplaceAll(identifier, "_", " ")
	}
	if a.Extract == "" {
		a.Extract = grokipediaUnrenderedNotice
	}
	a.Extract = truncateRunes(a.Extract, c.extractChars)
	if a.URL == "" {
		a.URL = PageURL(identifier)
	}
	return a, nil
}
