// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
service.go - Comparison Orchestration

Service is the request-level layer between the HTTP handlers and the core:
  - Articles: resolve a topic and fetch both sides through the content cache
  - Verdict: quota check (fail-closed), then cached-or-generated verdict
  - Vote / Votes: per-source trust counters (quota fail-open)
  - CheckSlug / CheckSlugs: existence checks against the synced catalog
  - GrokipediaArticle: single-article fetch by slug (quota fail-open)

Optional collaborators (Grokipedia client, verdict client) may be nil; the
features that need them report a models.ConfigurationError instead.
*/

//nolint:staticcheck // File documentation, not package doc
package compare

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/wikithat/internal/cache"
	"github.com/tomtom215/wikithat/internal/catalog"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/ratelimit"
	"github.com/tomtom215/wikithat/internal/sources"
	"github.com/tomtom215/wikithat/internal/validation"
)

// MaxSlugsPerCheck bounds a batch slug check.
const MaxSlugsPerCheck = 50

const wikipediaPageBase = "https://en.wikipedia.org/wiki/"

// Request errors.
var (
	ErrTooManySlugs  = fmt.Errorf("at most %d slugs per request", MaxSlugsPerCheck)
	ErrNoSlugs       = errors.New("slugs array is required")
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrInvalidSource = errors.New("invalid source")
	ErrInvalidURL    = errors.New("article url outside the allowed domains")
)

// TopicResolver maps topics to catalog identifiers.
type TopicResolver interface {
	Resolve(ctx context.Context, topic string) string
}

// SummarySource fetches source A articles.
type SummarySource interface {
	FetchArticleSummary(ctx context.Context, topic string) models.FetchResult[models.Article]
}

// ContentSource fetches source B articles by identifier.
type ContentSource interface {
	FetchArticleContent(ctx context.Context, identifier string) models.FetchResult[models.Article]
}

// VerdictGenerator produces a comparison verdict for two article URLs.
type VerdictGenerator interface {
	GenerateVerdict(ctx context.Context, topic, sourceAURL, sourceBURL string) (string, error)
}

// VoteStore persists trust votes.
type VoteStore interface {
	IncrementTrustVote(ctx context.Context, topic string, source models.Source) error
	GetTrustVotes(ctx context.Context, topic string) ([]models.TrustVotes, error)
}

// SlugStore answers catalog existence checks.
type SlugStore interface {
	ExistingLastModified(ctx context.Context, identifiers []string) (map[string]*string, error)
}

// Deps wires a Service. Grokipedia and Verdicts may be nil.
type Deps struct {
	Resolver   TopicResolver
	Content    *cache.ContentCache
	Wikipedia  SummarySource
	Grokipedia ContentSource
	Verdicts   VerdictGenerator
	Votes      VoteStore
	Slugs      SlugStore

	VerdictLimiter *ratelimit.Limiter
	VoteLimiter    *ratelimit.Limiter
	ScrapeLimiter  *ratelimit.Limiter
}

// Service orchestrates comparisons.
type Service struct {
	d Deps
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	return &Service{d: d}
}

// Comparison holds both sides of a topic. A side is nil when the source
// has no article or is unavailable; Unavailable lists sources that failed
// transiently.
type Comparison struct {
	Topic       string          `json:"topic"`
	Identifier  string          `json:"identifier"`
	Wikipedia   *models.Article `json:"wikipedia"`
	Grokipedia  *models.Article `json:"grokipedia"`
	Unavailable []models.Source `json:"unavailable,omitempty"`
}

// VerdictResult is a verdict plus the quota decision that admitted it.
type VerdictResult struct {
	Verdict  string              `json:"verdict"`
	Cached   bool                `json:"cached"`
	Decision models.RateDecision `json:"-"`
}

// VoteCounts holds the trust votes for both sources of a topic.
type VoteCounts struct {
	Wikipedia  int64 `json:"wikipedia"`
	Grokipedia int64 `json:"grokipedia"`
}

// VoteResult is the outcome of a trust vote.
type VoteResult struct {
	Count    int64               `json:"count"`
	Counts   VoteCounts          `json:"counts"`
	Decision models.RateDecision `json:"-"`
}

// SlugCheck reports whether a slug exists in the synced catalog.
type SlugCheck struct {
	Slug         string  `json:"slug"`
	Exists       bool    `json:"exists"`
	Title        *string `json:"title"`
	LastModified *string `json:"last_modified,omitempty"`
}

// Articles resolves topic and fetches both articles concurrently. It fails
// only when the topic is unusable or every attempted source failed.
func (s *Service) Articles(ctx context.Context, topic string) (Comparison, error) {
	clean, err := validation.SanitizeInput(topic, validation.DefaultMaxInputLength)
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{Topic: clean, Identifier: s.d.Resolver.Resolve(ctx, clean)}

	var wikiErr, grokErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cmp.Wikipedia, wikiErr = s.d.Content.GetOrFetch(gctx, clean, models.SourceWikipedia, func(ctx context.Context) models.FetchResult[models.Article] {
			return s.d.Wikipedia.FetchArticleSummary(ctx, clean)
		})
		return nil
	})
	if s.d.Grokipedia != nil {
		g.Go(func() error {
			cmp.Grokipedia, grokErr = s.d.Content.GetOrFetch(gctx, clean, models.SourceGrokipedia, func(ctx context.Context) models.FetchResult[models.Article] {
				return s.d.Grokipedia.FetchArticleContent(ctx, cmp.Identifier)
			})
			return nil
		})
	}
	_ = g.Wait()

	if wikiErr != nil {
		cmp.Unavailable = append(cmp.Unavailable, models.SourceWikipedia)
	}
	if grokErr != nil {
		cmp.Unavailable = append(cmp.Unavailable, models.SourceGrokipedia)
	}

	if wikiErr != nil && (grokErr != nil || s.d.Grokipedia == nil) {
		return cmp, wikiErr
	}
	if len(cmp.Unavailable) > 0 {
		logging.Ctx(ctx).Warn().
			Str("topic", clean).
			Interface("unavailable", cmp.Unavailable).
			Msg("Comparison served with a missing side")
	}
	return cmp, nil
}

// Verdict returns a verdict for topic on behalf of identity. The verdict
// quota is checked first and fails closed: a denial or a limiter failure
// returns models.ErrRateLimited along with the decision.
func (s *Service) Verdict(ctx context.Context, topic, identity string) (VerdictResult, error) {
	if s.d.Verdicts == nil {
		return VerdictResult{}, &models.ConfigurationError{Component: "verdict generator", Setting: "XAI_API_KEY"}
	}

	clean, err := validation.SanitizeInput(topic, validation.DefaultMaxInputLength)
	if err != nil {
		return VerdictResult{}, err
	}

	decision, err := s.d.VerdictLimiter.Allow(ctx, ratelimit.Key(ratelimit.ActionVerdict, identity))
	res := VerdictResult{Decision: decision}
	if err != nil {
		return res, fmt.Errorf("%w: %w", models.ErrRateLimited, err)
	}
	if !decision.Allowed {
		return res, models.ErrRateLimited
	}

	res.Verdict, res.Cached, err = s.d.Content.GetOrGenerateVerdict(ctx, clean, func(ctx context.Context) (string, error) {
		wikiURL, grokURL := s.articleURLs(ctx, clean)
		if !validation.ValidateURL(wikiURL, "wikipedia.org") || !validation.ValidateURL(grokURL, "grokipedia.com") {
			return "", ErrInvalidURL
		}
		return s.d.Verdicts.GenerateVerdict(ctx, clean, wikiURL, grokURL)
	})
	return res, err
}

// articleURLs returns the public page URLs for both sides of topic.
func (s *Service) articleURLs(ctx context.Context, topic string) (wikiURL, grokURL string) {
	wikiURL = wikipediaPageBase + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	grokURL = sources.PageURL(s.d.Resolver.Resolve(ctx, topic))
	return wikiURL, grokURL
}

// Vote records one trust vote for source on topic. The quota fails open.
func (s *Service) Vote(ctx context.Context, topic, source, identity string) (VoteResult, error) {
	src, err := models.ParseSource(source)
	if err != nil {
		return VoteResult{}, ErrInvalidSource
	}
	clean, err := validation.SanitizeInput(topic, validation.DefaultMaxInputLength)
	if err != nil {
		return VoteResult{}, err
	}

	decision, _ := s.d.VoteLimiter.Allow(ctx, ratelimit.Key(ratelimit.ActionTrustVote, identity))
	res := VoteResult{Decision: decision}
	if !decision.Allowed {
		return res, models.ErrRateLimited
	}

	if err := s.d.Votes.IncrementTrustVote(ctx, clean, src); err != nil {
		return res, fmt.Errorf("failed to record vote: %w", err)
	}

	res.Counts, err = s.counts(ctx, clean)
	if err != nil {
		return res, err
	}
	if src == models.SourceWikipedia {
		res.Count = res.Counts.Wikipedia
	} else {
		res.Count = res.Counts.Grokipedia
	}
	return res, nil
}

// Votes returns the trust votes for topic.
func (s *Service) Votes(ctx context.Context, topic string) (VoteCounts, error) {
	clean, err := validation.SanitizeInput(topic, validation.DefaultMaxInputLength)
	if err != nil {
		return VoteCounts{}, err
	}
	return s.counts(ctx, clean)
}

func (s *Service) counts(ctx context.Context, topic string) (VoteCounts, error) {
	votes, err := s.d.Votes.GetTrustVotes(ctx, topic)
	if err != nil {
		return VoteCounts{}, fmt.Errorf("failed to read votes: %w", err)
	}

	var c VoteCounts
	for _, v := range votes {
		switch v.Source {
		case models.SourceWikipedia:
			c.Wikipedia = v.Votes
		case models.SourceGrokipedia:
			c.Grokipedia = v.Votes
		}
	}
	return c, nil
}

// CheckSlug reports whether slug exists in the synced catalog.
func (s *Service) CheckSlug(ctx context.Context, slug string) (SlugCheck, error) {
	checks, err := s.CheckSlugs(ctx, []string{slug})
	if err != nil {
		return SlugCheck{}, err
	}
	return checks[0], nil
}

// CheckSlugs reports catalog existence for up to MaxSlugsPerCheck slugs,
// in input order.
func (s *Service) CheckSlugs(ctx context.Context, slugs []string) ([]SlugCheck, error) {
	switch {
	case len(slugs) == 0:
		return nil, ErrNoSlugs
	case len(slugs) > MaxSlugsPerCheck:
		return nil, ErrTooManySlugs
	}

	clean := make([]string, len(slugs))
	for i, slug := range slugs {
		c, err := validation.SanitizeInput(slug, validation.DefaultMaxInputLength)
		if err != nil {
			return nil, fmt.Errorf("slug %d: %w", i, err)
		}
		clean[i] = c
	}

	existing, err := s.d.Slugs.ExistingLastModified(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to check slugs: %w", err)
	}

	checks := make([]SlugCheck, len(clean))
	for i, slug := range clean {
		checks[i] = SlugCheck{Slug: slug}
		if lastMod, ok := existing[slug]; ok {
			title := catalog.TitleFromIdentifier(slug)
			checks[i].Exists = true
			checks[i].Title = &title
			checks[i].LastModified = lastMod
		}
	}
	return checks, nil
}

// GrokipediaArticle fetches the source B article for slug on behalf of
// identity. The quota fails open. A missing article returns
// models.NotFoundError.
func (s *Service) GrokipediaArticle(ctx context.Context, slug, identity string) (*models.Article, models.RateDecision, error) {
	if s.d.Grokipedia == nil {
		return nil, models.RateDecision{}, &models.ConfigurationError{Component: "grokipedia client", Setting: "GROKIPEDIA_API_URL"}
	}

	decision, _ := s.d.ScrapeLimiter.Allow(ctx, ratelimit.Key(ratelimit.ActionScrape, identity))
	if !decision.Allowed {
		return nil, decision, models.ErrRateLimited
	}

	clean, err := validation.SanitizeInput(slug, validation.DefaultMaxInputLength)
	if err != nil || !validation.ValidateSlug(clean) {
		return nil, decision, ErrInvalidSlug
	}

	article, err := s.d.Content.GetOrFetch(ctx, clean, models.SourceGrokipedia, func(ctx context.Context) models.FetchResult[models.Article] {
		return s.d.Grokipedia.FetchArticleContent(ctx, clean)
	})
	if err != nil {
		return nil, decision, err
	}
	if article == nil {
		return nil, decision, &models.NotFoundError{Resource: "grokipedia article", Key: clean}
	}
	return article, decision, nil
}
