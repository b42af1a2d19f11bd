// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
mappings.go - Topic Mapping Operations

Curated overrides from a Wikipedia topic to a catalog identifier.

SaveTopicMapping semantics:
  - no mapping: insert with vote_count = 1 (created)
  - same identifier: vote_count + 1 (upvoted)
  - different identifier: replace identifier, vote_count = 1 (updated)

Thread Safety:
The read-modify-write runs inside a transaction while holding mappingMu, so
concurrent saves within one process never lose an increment. Across processes
the last writer wins.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/wikithat/internal/models"
)

// GetTopicMapping returns the mapping for topic, or nil if there is none
func (db *DB) GetTopicMapping(ctx context.Context, topic string) (*models.TopicMapping, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	m := &models.TopicMapping{}
	err := db.conn.QueryRowContext(ctx, `
		SELECT wikipedia_topic, catalog_identifier, vote_count, created_at, updated_at
		FROM topic_mappings WHERE wikipedia_topic = ?`, topic).Scan(
		&m.WikipediaTopic, &m.CatalogIdentifier, &m.VoteCount, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topic mapping: %w", err)
	}
	return m, nil
}

// SaveTopicMapping records a curated mapping and reports what changed
func (db *DB) SaveTopicMapping(ctx context.Context, topic, identifier string) (models.MappingOutcome, error) {
	db.mappingMu.Lock()
	defer db.mappingMu.Unlock()

	var outcome models.MappingOutcome
	err := db.withConflictRetry(ctx, "save topic mapping", func(ctx context.Context) error {
		var err error
		outcome, err = db.saveTopicMappingTx(ctx, topic, identifier)
		return err
	})
	if err != nil {
		return "", writeError("topic_mappings", err)
	}
	return outcome, nil
}

func (db *DB) saveTopicMappingTx(ctx context.Context, topic, identifier string) (outcome models.MappingOutcome, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT catalog_identifier FROM topic_mappings WHERE wikipedia_topic = ?`, topic).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO topic_mappings (wikipedia_topic, catalog_identifier, vote_count, created_at, updated_at)
			VALUES (?, ?, 1, ?, ?)`, topic, identifier, now, now)
		outcome = models.MappingCreated
	case err != nil:
		return "", fmt.Errorf("failed to query topic mapping: %w", err)
	case current == identifier:
		_, err = tx.ExecContext(ctx, `
			UPDATE topic_mappings SET vote_count = vote_count + 1, updated_at = ?
			WHERE wikipedia_topic = ?`, now, topic)
		outcome = models.MappingUpvoted
	default:
		// A different identifier replaces the mapping and resets its votes
		_, err = tx.ExecContext(ctx, `
			UPDATE topic_mappings SET catalog_identifier = ?, vote_count = 1, updated_at = ?
			WHERE wikipedia_topic = ?`, identifier, now, topic)
		outcome = models.MappingUpdated
	}
	if err != nil {
		return "", fmt.Errorf("failed to write topic mapping: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit topic mapping: %w", err)
	}
	return outcome, nil
}
