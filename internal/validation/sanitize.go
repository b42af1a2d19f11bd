// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package validation

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputLength is the rune limit applied to free-text topics.
const DefaultMaxInputLength = 200

// ErrEmptyInput is returned when nothing usable remains after sanitizing.
var ErrEmptyInput = errors.New("input contains invalid content")

// injectionPatterns are stripped from any text that may reach an LLM prompt.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions?`),
	regexp.MustCompile(`(?i)system\s*:`),
	regexp.MustCompile(`(?i)assistant\s*:`),
	regexp.MustCompile(`(?i)user\s*:`),
	regexp.MustCompile(`(?i)\[INST\]`),
	regexp.MustCompile(`(?i)\[/INST\]`),
	regexp.MustCompile(`<\|.*?\|>`),
	regexp.MustCompile(`(?i)\{.*?system.*?\}`),
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	slugPattern   = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)
)

// SanitizeInput trims s, truncates it to maxLen runes, strips prompt-injection
// patterns and collapses whitespace. It fails if nothing is left.
func SanitizeInput(s string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxInputLength
	}

	out := strings.TrimSpace(s)
	if utf8.RuneCountInString(out) > maxLen {
		out = string([]rune(out)[:maxLen])
	}

	for _, p := range injectionPatterns {
		out = p.ReplaceAllString(out, "")
	}

	out = strings.TrimSpace(whitespaceRun.ReplaceAllString(out, " "))
	if out == "" {
		return "", ErrEmptyInput
	}
	return out, nil
}

// ValidateSlug reports whether s is a usable catalog slug: 1 to 200
// characters of letters, digits, whitespace, hyphens and underscores.
func ValidateSlug(s string) bool {
	return s != "" && len(s) <= 200 && slugPattern.MatchString(s)
}

// ValidateURL reports whether raw is an http(s) URL whose host is one of
// allowedHosts or a subdomain of one.
func ValidateURL(raw string, allowedHosts ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, allowed := range allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
