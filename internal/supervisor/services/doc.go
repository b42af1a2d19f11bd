// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

// Package services adapts the server's long-running components to
// suture.Service so they can be placed in the supervisor tree.
//
//   - HTTPServerService wraps an *http.Server (ListenAndServe/Shutdown).
//   - SyncService wraps the catalog sync manager (Start/Stop).
//   - PeriodicService runs a maintenance task on a fixed interval, used for
//     DuckDB checkpoints and Badger value-log GC.
//
// Every adapter returns ctx.Err() on a clean stop and implements
// fmt.Stringer so supervisor events name the service.
package services
