// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
database_schema.go - Database Schema Management

Tables:
  - catalog_entries: synced remote catalog, one row per identifier
  - topic_mappings: community-curated topic to identifier overrides
  - cached_articles: permanent article cache keyed by (topic, source)
  - cached_verdicts: generated verdicts with creation time for freshness checks
  - sync_status: single-row process-wide sync status record (id = 1)
  - trust_votes: per-(topic, source) trust counters

Index Strategy:
  - catalog_entries.normalized_key backs both exact resolver lookups and
    the substring search; identifiers sharing a key are disambiguated by
    ORDER BY identifier.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS catalog_entries (
			identifier TEXT PRIMARY KEY,
			display_title TEXT,
			last_modified TEXT,
			normalized_key TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS topic_mappings (
			wikipedia_topic TEXT PRIMARY KEY,
			catalog_identifier TEXT NOT NULL,
			vote_count INTEGER NOT NULL DEFAULT 1 CHECK (vote_count >= 1),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS cached_articles (
			topic TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			extract TEXT,
			url TEXT,
			thumbnail TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (topic, source)
		)`,

		`CREATE TABLE IF NOT EXISTS cached_verdicts (
			topic TEXT PRIMARY KEY,
			verdict TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sync_status (
			id INTEGER PRIMARY KEY,
			state TEXT NOT NULL,
			started_at TIMESTAMP,
			completed_at TIMESTAMP,
			total_entries BIGINT NOT NULL DEFAULT 0,
			last_error TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS trust_votes (
			topic TEXT NOT NULL,
			source TEXT NOT NULL,
			votes BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (topic, source)
		)`,
	}
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_catalog_normalized_key ON catalog_entries(normalized_key)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}

// seedSyncStatus inserts the idle status row if it does not exist yet
func (db *DB) seedSyncStatus() error {
	ctx, cancel := schemaContext()
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sync_status (id, state, total_entries) VALUES (1, 'idle', 0) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to seed sync status: %w", err)
	}
	return nil
}

// TableCounts returns the row count of every table in the schema.
func (db *DB) TableCounts(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tables := []string{"catalog_entries", "topic_mappings", "cached_articles", "cached_verdicts", "trust_votes"}
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
