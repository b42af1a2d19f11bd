// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

The tree has three layers so a failure in one does not take down the others:

	wikithat
	├── data-layer
	│   ├── duckdb-checkpoint
	│   └── ratelimit-gc (badger store only)
	├── sync-layer
	│   └── catalog-sync
	└── api-layer
	    └── http-server

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, which bridges to the zerolog output via slog.

Usage:

	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", 30*time.Minute, db.Checkpoint))
	tree.AddSyncService(services.NewSyncService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)

See the services subpackage for the adapters.
*/
package supervisor
