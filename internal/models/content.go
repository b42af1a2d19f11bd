// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package models

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies which encyclopedia an article came from.
type Source string

// Sources
const (
	SourceWikipedia  Source = "wikipedia"
	SourceGrokipedia Source = "grokipedia"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceWikipedia || s == SourceGrokipedia
}

// ParseSource converts a case-insensitive name to a Source.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown source %q", name)
	}
	return s, nil
}

// Article is the normalized content returned by either source.
type Article struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// CachedArticle is an article memoised by (Topic, Source). It never expires.
type CachedArticle struct {
	Topic     string    `json:"topic"`
	Source    Source    `json:"source"`
	Article   Article   `json:"article"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CachedVerdict is a generated verdict memoised by topic.
type CachedVerdict struct {
	Topic     string    `json:"topic"`
	Verdict   string    `json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
}

// FreshAt reports whether the verdict is still within the freshness window at now.
func (v CachedVerdict) FreshAt(now time.Time, window time.Duration) bool {
	return now.Sub(v.CreatedAt) < window
}

// TopicMapping is a community-curated override from a Wikipedia topic to a
// catalog identifier. VoteCount is always at least 1.
type TopicMapping struct {
	WikipediaTopic    string    `json:"wikipedia_topic"`
	CatalogIdentifier string    `json:"catalog_identifier"`
	VoteCount         int       `json:"vote_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MappingOutcome reports what SaveMapping did.
type MappingOutcome string

// Mapping outcomes
const (
	MappingCreated MappingOutcome = "created"
	MappingUpvoted MappingOutcome = "upvoted"
	MappingUpdated MappingOutcome = "updated"
)

// TrustVotes is the trust counter for one (topic, source) pair.
type TrustVotes struct {
	Topic  string `json:"topic"`
	Source Source `json:"source"`
	Votes  int64  `json:"votes"`
}

// RateDecision is the result of one rate limiter check.
type RateDecision struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
