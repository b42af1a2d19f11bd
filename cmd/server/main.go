// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

// Package main is the wikithat server and maintenance CLI.
//
// Commands:
//
//	wikithat serve          run the HTTP API, catalog sync scheduler and maintenance tasks (default)
//	wikithat sync           run one catalog sync and print the result as JSON
//	wikithat backfill-keys  fill normalized lookup keys for rows that lack one
//	wikithat resolve TOPIC  print the identifier a topic resolves to
//	wikithat stats          print schema version and table row counts
//	wikithat version        print build information
//
// Configuration comes from built-in defaults, an optional config file and
// environment variables, in increasing priority. A .env file is loaded into
// the environment first when present (see --env-file).
package main

import (
	"os"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
