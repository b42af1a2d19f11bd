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

// GetCachedArticle returns the cached article for (topic, source), or nil on a miss
func (db *DB) GetCachedArticle(ctx context.Context, topic string, source models.Source) (*models.CachedArticle, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		a         = &models.CachedArticle{Topic: topic, Source: source}
		extract   sql.NullString
		url       sql.NullString
		thumbnail sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT title, extract, url, thumbnail, updated_at
		FROM cached_articles WHERE topic = ? AND source = ?`, topic, string(source)).Scan(
		&a.Article.Title, &extract, &url, &thumbnail, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached article: %w", err)
	}
	a.Article.Extract = extract.String
	a.Article.URL = url.String
	a.Article.Thumbnail = thumbnail.String
	return a, nil
}

// PutCachedArticle upserts an article keyed by (topic, source)
func (db *DB) PutCachedArticle(ctx context.Context, a models.CachedArticle) error {
	err := db.withConflictRetry(ctx, "put cached article", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO cached_articles (topic, source, title, extract, url, thumbnail, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (topic, source) DO UPDATE SET
				title = EXCLUDED.title,
				extract = EXCLUDED.extract,
				url = EXCLUDED.url,
				thumbnail = EXCLUDED.thumbnail,
				updated_at = EXCLUDED.updated_at`,
			a.Topic, string(a.Source), a.Article.Title, a.Article.Extract, a.Article.URL, a.Article.Thumbnail, a.UpdatedAt)
		return err
	})
	return writeError("cached_articles", err)
}

// GetCachedVerdict returns the stored verdict for topic regardless of age, or nil
func (db *DB) GetCachedVerdict(ctx context.Context, topic string) (*models.CachedVerdict, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	v := &models.CachedVerdict{Topic: topic}
	err := db.conn.QueryRowContext(ctx,
		`SELECT verdict, created_at FROM cached_verdicts WHERE topic = ?`, topic).Scan(&v.Verdict, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached verdict: %w", err)
	}
	return v, nil
}

// PutCachedVerdict upserts a verdict, overwriting any stale row
func (db *DB) PutCachedVerdict(ctx context.Context, v models.CachedVerdict) error {
	err := db.withConflictRetry(ctx, "put cached verdict", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO cached_verdicts (topic, verdict, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (topic) DO UPDATE SET
				verdict = EXCLUDED.verdict,
				created_at = EXCLUDED.created_at`,
			v.Topic, v.Verdict, v.CreatedAt)
		return err
	})
	return writeError("cached_verdicts", err)
}

// DeleteCachedComparison drops the cached source B article and the verdict
// for topic so the next comparison refetches under the current mapping
func (db *DB) DeleteCachedComparison(ctx context.Context, topic string) error {
	err := db.withConflictRetry(ctx, "delete cached comparison", func(ctx context.Context) error {
		if _, err := db.conn.ExecContext(ctx,
			`DELETE FROM cached_articles WHERE topic = ? AND source = ?`, topic, string(models.SourceGrokipedia)); err != nil {
			return err
		}
		_, err := db.conn.ExecContext(ctx, `DELETE FROM cached_verdicts WHERE topic = ?`, topic)
		return err
	})
	return writeError("cached_articles", err)
}
