// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

// Package resolver maps free-text topics to Grokipedia catalog identifiers.
//
// Resolution runs three stages and stops at the first hit:
//
//  1. curated: exact lookup in the community topic_mappings table
//  2. normalized_index: catalog lookup by NormalizedKey, smallest identifier wins
//  3. heuristic: whitespace runs replaced by underscores, never verified
//
// Resolve never fails. A 404 from the downstream fetch of a heuristic
// identifier means "no match", not a resolver error.
//
// SaveMapping records community corrections and SearchIndex backs the
// interactive mapping picker.
package resolver
