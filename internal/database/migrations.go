// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/wikithat/internal/logging"
)

// migration is one append-only schema change. Shipped entries are never
// edited or removed; add a new version instead.
type migration struct {
	version int
	name    string
	stmt    string
}

var migrations = []migration{
	{1, "index_mapping_identifier",
		`CREATE INDEX IF NOT EXISTS idx_topic_mappings_identifier ON topic_mappings(catalog_identifier)`},
	{2, "index_verdict_created_at",
		`CREATE INDEX IF NOT EXISTS idx_cached_verdicts_created_at ON cached_verdicts(created_at)`},
}

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction together with its schema_migrations row.
func (db *DB) migrate() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		applied++
	}

	if applied > 0 {
		logging.Info().Int("applied", applied).Int("version", migrations[len(migrations)-1].version).Msg("Schema migrated")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		return fmt.Errorf("migration %d: record: %w", m.version, err)
	}
	return tx.Commit()
}

// GetCurrentSchemaVersion returns the highest applied migration, or 0.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
