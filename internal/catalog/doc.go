// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package catalog mirrors the remote encyclopedia's sitemap catalog into the
local store so topics can be resolved to page identifiers without calling
the remote.

# Overview

A sync reads the sitemap index, fetches each child sitemap, decodes every
<loc> into an identifier, and upserts entries whose last-modified value
changed since the previous run. Re-running a sync against an unchanged
catalog writes nothing.

# Components

  - HTTPSitemapSource: sitemap downloads with retry and a circuit breaker
  - Engine: one sync run, with batch shrinking, single-row fallback and a
    retry pass for failed batches
  - Manager: periodic and on-demand scheduling, one run at a time
  - BackfillNormalizedKeys: fills lookup keys for rows written before
    keys were stored

# Identifier Decoding

	https://grokipedia.com/page/Caf%C3%A9_society  ->  Café_society
	https://grokipedia.com/page/AT&amp;T           ->  AT&T

Display titles replace underscores with spaces. The normalized key is
resolver.NormalizedKey applied to the display title.

# Thread Safety

Engine and Manager are safe for concurrent use. Concurrent Sync calls on
one Engine are rejected with ErrSyncInProgress.
*/
package catalog
