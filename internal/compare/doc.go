// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

// Package compare orchestrates the per-request comparison flows on top of
// the resolver, the content cache, the remote sources and the quota
// limiters. The HTTP layer calls into Service and maps its errors to
// status codes; nothing here knows about HTTP.
package compare
