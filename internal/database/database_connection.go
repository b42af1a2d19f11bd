// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
database_connection.go - Connection Pool and Write Conflict Handling

Connection Pool Configuration:
  - MaxOpenConns: Based on CPU count for parallelism
  - MaxIdleConns: 2 for efficient connection reuse
  - ConnMaxLifetime: 1 hour to prevent stale connections
  - ConnMaxIdleTime: 5 minutes for idle connection cleanup

Write Conflicts:
DuckDB uses optimistic concurrency control. Two transactions updating the
same row conflict and one fails with "Transaction conflict". withConflictRetry
re-runs the write a bounded number of times with exponential backoff; the
upserts it wraps are idempotent, so a retry converges to the same row state.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/tomtom215/wikithat/internal/logging"
)

func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// withConflictRetry runs fn, retrying DuckDB transaction conflicts
func (db *DB) withConflictRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= db.maxConflictRetries; attempt++ {
		if attempt > 0 {
			delay := db.conflictDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			logging.Debug().Str("op", op).Int("attempt", attempt).Msg("Retrying after transaction conflict")
		}

		err = fn(ctx)
		if err == nil || !isTransactionConflict(err) {
			return err
		}
	}
	return fmt.Errorf("%s: gave up after %d conflict retries: %w", op, db.maxConflictRetries, err)
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}
