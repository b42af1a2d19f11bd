// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/wikithat/internal/models"
)

// SetSyncStatus overwrites the single sync status row
func (db *DB) SetSyncStatus(ctx context.Context, status models.SyncStatus) error {
	var lastErr interface{}
	if status.LastError != "" {
		lastErr = status.LastError
	}

	err := db.withConflictRetry(ctx, "set sync status", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO sync_status (id, state, started_at, completed_at, total_entries, last_error)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				state = EXCLUDED.state,
				started_at = EXCLUDED.started_at,
				completed_at = EXCLUDED.completed_at,
				total_entries = EXCLUDED.total_entries,
				last_error = EXCLUDED.last_error`,
			string(status.State), nullTime(status.StartedAt), nullTime(status.CompletedAt), status.TotalEntries, lastErr)
		return err
	})
	return writeError("sync_status", err)
}

// GetSyncStatus returns the sync status record
func (db *DB) GetSyncStatus(ctx context.Context) (models.SyncStatus, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		status    models.SyncStatus
		state     string
		started   sql.NullTime
		completed sql.NullTime
		lastErr   sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT state, started_at, completed_at, total_entries, last_error
		FROM sync_status WHERE id = 1`).Scan(&state, &started, &completed, &status.TotalEntries, &lastErr)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncStatus{State: models.SyncIdle}, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to query sync status: %w", err)
	}

	status.State = models.SyncState(state)
	if started.Valid {
		t := started.Time
		status.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		status.CompletedAt = &t
	}
	status.LastError = lastErr.String
	return status, nil
}
