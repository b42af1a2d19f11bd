// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

// Request structs validated with the validation singleton before the
// handler calls into the service. Content rules (prompt-injection
// stripping, slug charset) are applied again by the service itself.

// TopicQuery is the ?topic= parameter of resolve, compare and trust-vote reads.
type TopicQuery struct {
	Topic string `validate:"required,max=500"`
}

// MappingSearchQuery is the query of GET /topic-mapping.
type MappingSearchQuery struct {
	Q     string `validate:"max=200"`
	Limit int    `validate:"omitempty,min=1,max=100"`
}

// SuggestQuery is the query of GET /suggest.
type SuggestQuery struct {
	Q     string `validate:"max=200"`
	Limit int    `validate:"omitempty,min=1,max=20"`
}

// SaveMappingRequest is the body of POST /topic-mapping.
type SaveMappingRequest struct {
	WikipediaTopic string `json:"wikipediaTopic" validate:"required,max=500"`
	GrokipediaSlug string `json:"grokipediaSlug" validate:"required,max=500"`
}

// VerdictRequest is the body of POST /verdict.
type VerdictRequest struct {
	Topic string `json:"topic" validate:"required,max=500"`
}

// TrustVoteRequest is the body of POST /trust-vote.
type TrustVoteRequest struct {
	Topic  string `json:"topic" validate:"required,max=500"`
	Source string `json:"source" validate:"required,source"`
}

// SlugQuery is the ?slug= parameter of the slug check and article fetch.
type SlugQuery struct {
	Slug string `validate:"required,max=200"`
}

// SlugsCheckRequest is the body of POST /slugs/check.
type SlugsCheckRequest struct {
	Slugs []string `json:"slugs" validate:"required,min=1,max=50,dive,required,max=200"`
}
