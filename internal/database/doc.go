// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

// Package database provides DuckDB persistence for the Wikithat pipeline.
//
// # Overview
//
// A single DB value backs every durable store the pipeline needs:
//
//   - catalog_entries: the synced remote catalog (catalog.Store, resolver lookups)
//   - topic_mappings: curated overrides (resolver.Store)
//   - cached_articles, cached_verdicts: the content cache (cache.ContentStore)
//   - trust_votes: per-source trust counters (compare.VoteStore)
//   - sync_status: the process-wide sync status record
//
// # Files
//
//   - database.go: connection lifecycle (New, Close, Ping, Conn)
//   - database_schema.go: table and index creation
//   - migrations.go: versioned migrations tracked in schema_migrations
//   - database_connection.go: pool settings and transaction conflict retry
//   - database_utils.go: profiling, context timeouts, checkpointing
//   - catalog.go, mappings.go, content.go, trust_votes.go, sync_status.go: data access
//
// # Writes
//
// Every write is an INSERT ... ON CONFLICT DO UPDATE upsert, so concurrent
// identical writes converge to the same row state. Failed writes are returned
// as *models.StoreWriteError; deadline and interrupt failures report
// Timeout() == true, which the sync engine uses to shrink its batch size.
//
// # Database Technology
//
// DuckDB via the CGO driver github.com/duckdb/duckdb-go/v2. Tests use an
// in-memory database (":memory:") and serialize access with a semaphore.
package database
