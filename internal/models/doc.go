// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package models defines data structures shared across Wikithat packages.

Model Categories:

1. Catalog:
  - CatalogEntry: one page of the remote catalog, keyed by identifier
  - SyncStatus, SyncResult, BatchRef: progress and outcome of a catalog sync

2. Resolution:
  - TopicMapping: community-curated topic to identifier override
  - MappingOutcome: created, upvoted or updated

3. Content:
  - Source: which encyclopedia an article came from
  - Article, CachedArticle, CachedVerdict: cached remote content
  - TrustVotes: per-source trust counters

4. Quota:
  - RateDecision: result of a rate limiter check

5. Errors and remote results:
  - TransientFetchError, NotFoundError, StoreWriteError, ConfigurationError, SyncFailedError
  - FetchResult: tagged Found/NotFound/Transient result from a remote collaborator
*/
package models
