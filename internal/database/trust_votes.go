// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/wikithat/internal/models"
)

// IncrementTrustVote adds one vote for (topic, source)
func (db *DB) IncrementTrustVote(ctx context.Context, topic string, source models.Source) error {
	err := db.withConflictRetry(ctx, "increment trust vote", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO trust_votes (topic, source, votes) VALUES (?, ?, 1)
			ON CONFLICT (topic, source) DO UPDATE SET votes = trust_votes.votes + 1`,
			topic, string(source))
		return err
	})
	return writeError("trust_votes", err)
}

// GetTrustVotes returns the vote counts for both sources of topic.
// Sources without votes are reported as zero.
func (db *DB) GetTrustVotes(ctx context.Context, topic string) ([]models.TrustVotes, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT source, votes FROM trust_votes WHERE topic = ?`, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to query trust votes: %w", err)
	}
	defer rows.Close()

	counts := map[models.Source]int64{}
	for rows.Next() {
		var source string
		var votes int64
		if err := rows.Scan(&source, &votes); err != nil {
			return nil, fmt.Errorf("failed to scan trust votes: %w", err)
		}
		counts[models.Source(source)] = votes
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return []models.TrustVotes{
		{Topic: topic, Source: models.SourceWikipedia, Votes: counts[models.SourceWikipedia]},
		{Topic: topic, Source: models.SourceGrokipedia, Votes: counts[models.SourceGrokipedia]},
	}, nil
}
