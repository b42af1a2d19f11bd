// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package resolver

import (
	"strings"
	"unicode"
)

// NormalizedKey folds a title or identifier into the search key stored on
// catalog entries: lowercase with spaces and underscores removed.
// NormalizedKey(NormalizedKey(s)) == NormalizedKey(s).
func NormalizedKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// HeuristicIdentifier derives the catalog's expected identifier for topic
// by trimming it and replacing each whitespace run with an underscore.
// The result is not checked against the catalog.
func HeuristicIdentifier(topic string) string {
	return strings.Join(strings.Fields(topic), "_")
}
