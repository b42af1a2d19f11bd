// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package catalog

import (
	"context"
	"fmt"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/resolver"
)

// DefaultBackfillPageSize is the number of rows updated per transaction.
const DefaultBackfillPageSize = 5000

// BackfillStore reads and writes missing normalized keys.
type BackfillStore interface {
	EntriesMissingNormalizedKey(ctx context.Context, limit int) ([]models.CatalogEntry, error)
	SetNormalizedKeys(ctx context.Context, keys map[string]string) (int, error)
}

// BackfillNormalizedKeys computes normalized keys for rows that lack one,
// page by page, and returns the number of rows updated. Rows whose key
// would be empty are skipped, and the loop stops once a page yields no
// updates.
func BackfillNormalizedKeys(ctx context.Context, store BackfillStore, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultBackfillPageSize
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		rows, err := store.EntriesMissingNormalizedKey(ctx, pageSize)
		if err != nil {
			return total, fmt.Errorf("failed to list entries missing normalized key: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		keys := make(map[string]string, len(rows))
		for _, row := range rows {
			source := row.Identifier
			if row.DisplayTitle != nil && *row.DisplayTitle != "" {
				source = *row.DisplayTitle
			}
			if key := resolver.NormalizedKey(source); key != "" {
				keys[row.Identifier] = key
			}
		}
		if len(keys) == 0 {
			break
		}

		n, err := store.SetNormalizedKeys(ctx, keys)
		if err != nil {
			return total, fmt.Errorf("failed to write normalized keys: %w", err)
		}
		total += n
		logging.Ctx(ctx).Info().Int("updated", n).Int("total", total).Msg("Normalized key backfill progress")

		if n == 0 || len(rows) < pageSize {
			break
		}
	}

	return total, nil
}
