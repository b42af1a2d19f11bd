// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
catalog.go - Catalog Entry Operations

Data access for the synced remote catalog:
  - ExistingLastModified: diff support for the sync engine
  - UpsertCatalogEntries: atomic multi-row upsert (one transaction per batch)
  - UpsertCatalogEntry: single-row fallback used when a batch is rejected
  - FindIdentifierByNormalizedKey: resolver stage two with deterministic tie-break
  - SearchCatalog: substring match over normalized keys
  - ExistingIdentifiers: slug existence checks
  - EntriesMissingNormalizedKey / SetNormalizedKeys: backfill support

All writes use INSERT ... ON CONFLICT DO UPDATE so re-running a sync is
idempotent. Write failures are returned as models.StoreWriteError.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
)

// lookupChunkSize bounds the number of placeholders in one IN (...) clause
const lookupChunkSize = 1000

const upsertCatalogEntrySQL = `
	INSERT INTO catalog_entries (identifier, display_title, last_modified, normalized_key, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (identifier) DO UPDATE SET
		display_title = EXCLUDED.display_title,
		last_modified = EXCLUDED.last_modified,
		normalized_key = EXCLUDED.normalized_key,
		updated_at = EXCLUDED.updated_at`

// placeholders returns "?, ?, ..." with n markers
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// ExistingLastModified returns the stored last_modified for each identifier
// that already exists. Identifiers absent from the map are new. A present key
// with a nil value means the row exists without a last_modified.
func (db *DB) ExistingLastModified(ctx context.Context, identifiers []string) (map[string]*string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	existing := make(map[string]*string, len(identifiers))
	for start := 0; start < len(identifiers); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(identifiers))
		chunk := identifiers[start:end]

		query := `SELECT identifier, last_modified FROM catalog_entries WHERE identifier IN (` + placeholders(len(chunk)) + `)`
		rows, err := db.conn.QueryContext(ctx, query, stringArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("failed to query existing catalog entries: %w", err)
		}

		for rows.Next() {
			var id string
			var lastMod sql.NullString
			if err := rows.Scan(&id, &lastMod); err != nil {
				closeQuietly(rows)
				return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
			}
			if lastMod.Valid {
				v := lastMod.String
				existing[id] = &v
			} else {
				existing[id] = nil
			}
		}
		if err := rows.Err(); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to iterate catalog entries: %w", err)
		}
		closeWithLog(rows, "catalog rows")
	}

	return existing, nil
}

// UpsertCatalogEntries upserts a batch in a single transaction.
// Either every row is written or none is.
func (db *DB) UpsertCatalogEntries(ctx context.Context, entries []models.CatalogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	err := db.withConflictRetry(ctx, "upsert catalog batch", func(ctx context.Context) error {
		return db.upsertCatalogBatch(ctx, entries)
	})
	if err != nil {
		return 0, writeError("catalog_entries", err)
	}
	return len(entries), nil
}

func (db *DB) upsertCatalogBatch(ctx context.Context, entries []models.CatalogEntry) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertCatalogEntrySQL)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	now := time.Now().UTC()
	for i := range entries {
		e := &entries[i]
		if _, err = stmt.ExecContext(ctx, e.Identifier, nullString(e.DisplayTitle), nullString(e.LastModified), e.NormalizedKey, now); err != nil {
			return fmt.Errorf("failed to upsert %q: %w", e.Identifier, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog batch: %w", err)
	}
	return nil
}

// UpsertCatalogEntry upserts one row outside any batch transaction
func (db *DB) UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) error {
	err := db.withConflictRetry(ctx, "upsert catalog entry", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, upsertCatalogEntrySQL,
			entry.Identifier, nullString(entry.DisplayTitle), nullString(entry.LastModified), entry.NormalizedKey, time.Now().UTC())
		return err
	})
	return writeError("catalog_entries", err)
}

// CountCatalogEntries returns the number of synced entries
func (db *DB) CountCatalogEntries(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count catalog entries: %w", err)
	}
	return n, nil
}

// FindIdentifierByNormalizedKey returns the lexicographically smallest
// identifier whose normalized key equals key.
func (db *DB) FindIdentifierByNormalizedKey(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id string
	err := db.conn.QueryRowContext(ctx,
		`SELECT identifier FROM catalog_entries WHERE normalized_key = ? ORDER BY identifier LIMIT 1`, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query normalized key: %w", err)
	}
	return id, true, nil
}

// SearchCatalog returns up to limit entries whose normalized key contains
// normalizedQuery, ordered by identifier.
func (db *DB) SearchCatalog(ctx context.Context, normalizedQuery string, limit int) ([]models.CatalogEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT identifier, display_title, last_modified, normalized_key
		FROM catalog_entries
		WHERE contains(normalized_key, ?)
		ORDER BY identifier
		LIMIT ?`, normalizedQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer rows.Close()

	entries := make([]models.CatalogEntry, 0, limit)
	for rows.Next() {
		e, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExistingIdentifiers reports which of the given identifiers are in the catalog
func (db *DB) ExistingIdentifiers(ctx context.Context, identifiers []string) (map[string]bool, error) {
	existing, err := db.ExistingLastModified(ctx, identifiers)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		_, ok := existing[id]
		found[id] = ok
	}
	return found, nil
}

// EntriesMissingNormalizedKey returns up to limit entries with a NULL or
// empty normalized key, ordered by identifier.
func (db *DB) EntriesMissingNormalizedKey(ctx context.Context, limit int) ([]models.CatalogEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT identifier, display_title, last_modified, normalized_key
		FROM catalog_entries
		WHERE normalized_key IS NULL OR normalized_key = ''
		ORDER BY identifier
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries missing normalized key: %w", err)
	}
	defer rows.Close()

	var entries []models.CatalogEntry
	for rows.Next() {
		e, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetNormalizedKeys writes identifier -> normalized key pairs in one transaction
func (db *DB) SetNormalizedKeys(ctx context.Context, keys map[string]string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	err := db.withConflictRetry(ctx, "set normalized keys", func(ctx context.Context) (err error) {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()

		stmt, err := tx.PrepareContext(ctx, `UPDATE catalog_entries SET normalized_key = ? WHERE identifier = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare update: %w", err)
		}
		defer closeWithLog(stmt, "prepared statement")

		for id, key := range keys {
			if _, err = stmt.ExecContext(ctx, key, id); err != nil {
				return fmt.Errorf("failed to update %q: %w", id, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, writeError("catalog_entries", err)
	}
	return len(keys), nil
}

// nullString converts an optional string to a driver value
func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nullTime converts an optional time to a driver value
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCatalogEntry(rows rowScanner) (models.CatalogEntry, error) {
	var e models.CatalogEntry
	var title, lastMod, key sql.NullString
	if err := rows.Scan(&e.Identifier, &title, &lastMod, &key); err != nil {
		return e, fmt.Errorf("failed to scan catalog entry: %w", err)
	}
	if title.Valid {
		v := title.String
		e.DisplayTitle = &v
	}
	if lastMod.Valid {
		v := lastMod.String
		e.LastModified = &v
	}
	e.NormalizedKey = key.String
	return e, nil
}
