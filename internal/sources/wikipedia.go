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
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
)

// Wikipedia defaults.
const (
	DefaultWikipediaRESTURL   = "https://en.wikipedia.org/api/rest_v1"
	DefaultWikipediaActionURL = "https://en.wikipedia.org/w/api.php"
	DefaultSearchLimit        = 5
	MaxSearchLimit            = 20
)

const wikipediaService = "wikipedia"

// wikipediaSummary is the subset of the REST page summary we read
type wikipediaSummary struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs *struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// WikipediaClient fetches article summaries and title suggestions.
type WikipediaClient struct {
	client    *http.Client
	restURL   string
	actionURL string
	userAgent string
	limiter   *rate.Limiter
	breaker   *Breaker
}

// NewWikipediaClient creates a client from cfg. Empty URLs use the English
// Wikipedia endpoints.
func NewWikipediaClient(cfg *config.WikipediaConfig) *WikipediaClient {
	c := &WikipediaClient{
		client:    NewHTTPClient(cfg.Timeout),
		restURL:   strings.TrimRight(cfg.RESTURL, "/"),
		actionURL: cfg.ActionURL,
		userAgent: cfg.UserAgent,
		limiter:   newOutboundLimiter(cfg.RPS),
		breaker:   NewBreaker("wikipedia-api"),
	}
	if c.restURL == "" {
		c.restURL = DefaultWikipediaRESTURL
	}
	if c.actionURL == "" {
		c.actionURL = DefaultWikipediaActionURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c
}

// FetchArticleSummary fetches the page summary for topic. Spaces in the
// title become underscores.
func (c *WikipediaClient) FetchArticleSummary(ctx context.Context, topic string) models.FetchResult[models.Article] {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	endpoint := c.restURL + "/page/summary/" + url.PathEscape(title)

	start := time.Now()
	article, err := Execute(c.breaker, func() (*models.Article, error) {
		return c.fetchSummary(ctx, endpoint, title)
	})
	res := toResult(article, err, "wikipedia summary", endpoint)
	metrics.RecordFetchResult(wikipediaService, time.Since(start), res.Kind)

	if res.Kind == models.KindTransient {
		logging.Ctx(ctx).Warn().Err(res.Err).Str("topic", topic).Msg("Wikipedia summary fetch failed")
	}
	return res
}

func (c *WikipediaClient) fetchSummary(ctx context.Context, endpoint, title string) (*models.Article, error) {
	var summary wikipediaSummary
	if err := c.getJSON(ctx, endpoint, "wikipedia summary", title, &summary); err != nil {
		return nil, err
	}

	a := &models.Article{
		Title:   summary.Title,
		Extract: summary.Extract,
	}
	if a.Title == "" {
		a.Title = strings.ReplaceAll(title, "_", " ")
	}
	if summary.Thumbnail != nil {
		a.Thumbnail = summary.Thumbnail.Source
	}
	if summary.ContentURLs != nil {
		a.URL = summary.ContentURLs.Desktop.Page
	}
	if a.URL == "" {
		a.URL = "https://en.wikipedia.org/wiki/" + url.PathEscape(title)
	}
	return a, nil
}

// Search returns up to limit title suggestions for query from the
// opensearch API. limit <= 0 means DefaultSearchLimit.
func (c *WikipediaClient) Search(ctx context.Context, query string, limit int) ([]string, error) {
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}

	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")
	endpoint := c.actionURL + "?" + params.Encode()

	start := time.Now()
	titles, err := Execute(c.breaker, func() ([]string, error) {
		// opensearch answers [query, [titles], [descriptions], [urls]]
		var raw []json.RawMessage
		if err := c.getJSON(ctx, endpoint, "wikipedia search", query, &raw); err != nil {
			return nil, err
		}
		titles := []string{}
		if len(raw) > 1 {
			if err := json.Unmarshal(raw[1], &titles); err != nil {
				return nil, fmt.Errorf("failed to decode opensearch titles: %w", err)
			}
		}
		return titles, nil
	})
	metrics.RecordExternalCall(wikipediaService+"_search", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (c *WikipediaClient) getJSON(ctx context.Context, endpoint, op, key string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return TransportError(ctx, op, endpoint, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Msg("Failed to close Wikipedia response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return StatusError(op, endpoint, resp, "wikipedia article", key)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
