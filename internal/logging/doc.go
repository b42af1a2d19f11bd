// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package logging provides centralized zerolog-based logging for Wikithat.

The package keeps one process-wide zerolog.Logger, swapped atomically, and exposes level
helpers around it. JSON is the default output; console output is available for
local development.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Int("inserted", n).Msg("Catalog sync completed")
	logging.Error().Err(err).Str("sitemap", url).Msg("Sitemap fetch failed")

	// With request/correlation IDs
	logging.Ctx(ctx).Warn().Str("key", key).Msg("Rate limit store error")

# Context Propagation

HTTP requests carry a request ID set by the API middleware. Each catalog sync
run carries its own correlation ID. Ctx(ctx) adds both fields when present.

# slog Bridge

NewSlogLogger returns a *slog.Logger backed by the global zerolog logger. The
supervisor tree passes it to sutureslog so supervisor events share the same
output and format.

# Environment Variables

  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: true/false (default: false)
*/
package logging
