// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

// Package validation provides request validation and input sanitization.
//
// # Struct Validation
//
// A thread-safe singleton go-playground/validator instance with two custom tags:
//
//   - slug: letters, digits, whitespace, hyphens and underscores, 1 to 200 characters
//   - source: "wikipedia" or "grokipedia" (case-insensitive)
//
// Example:
//
//	type MappingRequest struct {
//	    WikipediaTopic string `json:"wikipediaTopic" validate:"required,max=200"`
//	    GrokipediaSlug string `json:"grokipediaSlug" validate:"required,slug"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code and apiErr.Message
//	}
//
// # Sanitization
//
// SanitizeInput prepares free text that may be embedded in an LLM prompt:
// trim, truncate to a rune limit, strip known prompt-injection markers
// ("ignore previous instructions", role prefixes, [INST] tags, <|special|>
// tokens), then collapse whitespace. Empty results are rejected with
// ErrEmptyInput.
//
// ValidateURL restricts prompt URLs to an allowlist of hosts and their subdomains.
// ValidateSlug guards identifiers that are interpolated into remote page URLs.
//
// # Error Format
//
// ToAPIError produces the VALIDATION_ERROR shape used by the api package.
package validation
