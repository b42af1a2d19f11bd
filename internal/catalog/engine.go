// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
engine.go - Catalog Sync Engine

Mirrors the remote sitemap catalog into the local store.

Run Phases:
 1. Mark status running
 2. Fetch the sitemap index (failure here fails the whole run)
 3. Fetch child sitemaps concurrently, a window of Workers at a time
 4. Decode, dedupe and split each sitemap into batches
 5. Diff every batch against stored last-modified values
 6. Upsert changed rows serially, one transaction per batch
 7. Retry failed batches once with a smaller batch size and slower pacing
 8. Mark status completed (with the catalog size) or failed

Write Failure Handling:
  - Store timeout: halve the batch down to MinBatchSize, at most
    MaxShrinkAttempts times, then leave the remainder for the retry pass
  - Other batch failure: fall back to single-row upserts; rows that still
    fail are left for the retry pass

Cancellation is checked between sitemaps and between batches. A cancelled
run is recorded as failed and returns ctx.Err().
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/resolver"
)

// Default sync tuning, used when the corresponding setting is unset.
const (
	DefaultBatchSize         = 1000
	DefaultMinBatchSize      = 100
	DefaultMaxShrinkAttempts = 4
	DefaultRetryBatchSize    = 50
	DefaultRetryDelay        = 200 * time.Millisecond
	DefaultWorkers           = 4
)

// statusWriteTimeout bounds status writes, which outlive a cancelled run
const statusWriteTimeout = 10 * time.Second

// ErrSyncInProgress is returned when a sync is requested while one is running.
var ErrSyncInProgress = errors.New("catalog sync already in progress")

// Store is the persistence the sync engine writes to.
type Store interface {
	ExistingLastModified(ctx context.Context, identifiers []string) (map[string]*string, error)
	UpsertCatalogEntries(ctx context.Context, entries []models.CatalogEntry) (int, error)
	UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) error
	CountCatalogEntries(ctx context.Context) (int64, error)
	SetSyncStatus(ctx context.Context, status models.SyncStatus) error
	GetSyncStatus(ctx context.Context) (models.SyncStatus, error)
}

// Engine runs catalog syncs. At most one sync runs at a time per Engine.
type Engine struct {
	source SitemapSource
	store  Store
	prefix string

	batchSize      int
	minBatchSize   int
	maxShrink      int
	retryBatchSize int
	workers        int
	batchDelay     time.Duration
	retryDelay     time.Duration

	writeMu sync.Mutex
	running atomic.Bool
	now     func() time.Time
}

// failedBatch is a batch awaiting the retry pass. entries is nil when the
// whole sitemap failed to load.
type failedBatch struct {
	ref     models.BatchRef
	entries []models.CatalogEntry
}

type loadedSitemap struct {
	entries []models.CatalogEntry
	err     error
}

// NewEngine creates a sync engine. Unset tuning values fall back to defaults.
func NewEngine(source SitemapSource, store Store, cfg *config.CatalogConfig) *Engine {
	e := &Engine{
		source:         source,
		store:          store,
		prefix:         cfg.PagePrefix,
		batchSize:      orDefault(cfg.BatchSize, DefaultBatchSize),
		minBatchSize:   orDefault(cfg.MinBatchSize, DefaultMinBatchSize),
		maxShrink:      orDefault(cfg.MaxShrinkAttempts, DefaultMaxShrinkAttempts),
		retryBatchSize: orDefault(cfg.RetryBatchSize, DefaultRetryBatchSize),
		workers:        orDefault(cfg.Workers, DefaultWorkers),
		batchDelay:     cfg.BatchDelay,
		retryDelay:     cfg.RetryDelay,
		now:            time.Now,
	}
	if e.retryDelay <= 0 {
		e.retryDelay = DefaultRetryDelay
	}
	if e.minBatchSize > e.batchSize {
		e.minBatchSize = e.batchSize
	}
	return e
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// SetClock replaces the time source. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Running reports whether a sync is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Status returns the persisted sync status.
func (e *Engine) Status(ctx context.Context) (models.SyncStatus, error) {
	return e.store.GetSyncStatus(ctx)
}

// Sync performs one full catalog sync. It returns ErrSyncInProgress if a
// sync is already running, a models.SyncFailedError if the index cannot be
// read, and ctx.Err() if cancelled. Per-batch failures do not fail the run;
// they are reported in SyncResult.FailedBatches.
func (e *Engine) Sync(ctx context.Context) (models.SyncResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return models.SyncResult{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	metrics.SetSyncInProgress(true)
	defer metrics.SetSyncInProgress(false)

	log := logging.Ctx(ctx)
	start := e.now()
	startedAt := start.UTC()
	e.writeStatus(ctx, models.SyncStatus{State: models.SyncRunning, StartedAt: &startedAt})
	log.Info().Msg("Catalog sync started")

	result, err := e.run(ctx)

	duration := e.now().Sub(start)
	metrics.RecordSyncRun(duration, result, err)

	completedAt := e.now().UTC()
	status := models.SyncStatus{
		State:        models.SyncCompleted,
		StartedAt:    &startedAt,
		CompletedAt:  &completedAt,
		TotalEntries: e.countEntries(ctx),
	}
	if err != nil {
		status.State = models.SyncFailed
		status.LastError = err.Error()
		e.writeStatus(ctx, status)

		log.Error().Err(err).
			Int("inserted", result.Inserted).
			Int("skipped", result.Skipped).
			Dur("duration", duration).
			Msg("Catalog sync failed")
		return result, err
	}
	e.writeStatus(ctx, status)

	log.Info().
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("failed_batches", len(result.FailedBatches)).
		Int64("total_entries", status.TotalEntries).
		Dur("duration", duration).
		Msg("Catalog sync completed")
	return result, nil
}

func (e *Engine) run(ctx context.Context) (models.SyncResult, error) {
	result := models.SyncResult{FailedBatches: []models.BatchRef{}}

	urls, err := e.source.FetchSitemapIndex(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, &models.SyncFailedError{Err: err}
	}
	logging.Ctx(ctx).Info().Int("sitemaps", len(urls)).Msg("Sitemap index loaded")

	var failed []failedBatch
	pace := newPacer(e.batchDelay)

	for start := 0; start < len(urls); start += e.workers {
		window := urls[start:min(start+e.workers, len(urls))]
		loaded := e.loadWindow(ctx, window)

		for i, ls := range loaded {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if ls.err != nil {
				logging.Ctx(ctx).Warn().Err(ls.err).Str("sitemap", window[i]).Msg("Sitemap could not be loaded")
				failed = append(failed, failedBatch{ref: models.BatchRef{
					SitemapURL: window[i],
					Offset:     -1,
					Reason:     ls.err.Error(),
				}})
				continue
			}

			failed = append(failed, e.processSitemap(ctx, window[i], ls.entries, e.batchSize, pace, &result)...)
			logging.Ctx(ctx).Debug().
				Str("sitemap", window[i]).
				Int("position", start+i+1).
				Int("of", len(urls)).
				Int("inserted", result.Inserted).
				Int("skipped", result.Skipped).
				Msg("Sitemap processed")
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if len(failed) > 0 {
		logging.Ctx(ctx).Info().Int("failed_batches", len(failed)).Msg("Retrying failed batches")
		result.FailedBatches = e.retryFailed(ctx, failed, &result)
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	return result, nil
}

// loadWindow fetches and decodes sitemaps concurrently. Results are in
// input order; per-sitemap errors are carried in the result.
func (e *Engine) loadWindow(ctx context.Context, urls []string) []loadedSitemap {
	out := make([]loadedSitemap, len(urls))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, u := range urls {
		g.Go(func() error {
			out[i].entries, out[i].err = e.loadSitemap(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Engine) loadSitemap(ctx context.Context, url string) ([]models.CatalogEntry, error) {
	data, err := e.source.FetchSitemap(ctx, url)
	if err != nil {
		return nil, err
	}

	raw, err := ParseSitemap(data)
	if err != nil {
		return nil, err
	}

	entries, dropped := ToCatalogEntries(raw, e.prefix, resolver.NormalizedKey)
	if dropped > 0 {
		logging.Ctx(ctx).Debug().Str("sitemap", url).Int("dropped", dropped).Msg("Dropped entries with empty identifiers")
	}
	return Dedupe(entries), nil
}

// processSitemap writes entries in batches of size and returns the batches
// that could not be fully written. It stops early if ctx is cancelled.
func (e *Engine) processSitemap(ctx context.Context, url string, entries []models.CatalogEntry, size int, pace *rate.Limiter, result *models.SyncResult) []failedBatch {
	var failed []failedBatch

	for off := 0; off < len(entries); off += size {
		if err := pace.Wait(ctx); err != nil {
			return failed
		}

		batch := entries[off:min(off+size, len(entries))]
		inserted, skipped, rejected, err := e.processBatch(ctx, batch)
		result.Inserted += inserted
		result.Skipped += skipped

		if len(rejected) > 0 {
			logging.Ctx(ctx).Warn().Err(err).
				Str("sitemap", url).
				Int("offset", off).
				Int("rejected", len(rejected)).
				Msg("Batch write failed")
			failed = append(failed, failedBatch{
				ref: models.BatchRef{
					SitemapURL: url,
					Offset:     off,
					Size:       len(batch),
					Reason:     errReason(err),
				},
				entries: rejected,
			})
		}
	}

	return failed
}

// processBatch diffs batch against the store and upserts the changed rows.
// rejected holds rows that were not written.
func (e *Engine) processBatch(ctx context.Context, batch []models.CatalogEntry) (inserted, skipped int, rejected []models.CatalogEntry, err error) {
	changed := e.diff(ctx, batch)
	skipped = len(batch) - len(changed)
	if len(changed) == 0 {
		return 0, skipped, nil, nil
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	inserted, rejected, err = e.upsert(ctx, changed)
	return inserted, skipped, rejected, err
}

// diff returns the entries that are new, have no stored last-modified
// value, or carry a last-modified value different from the stored one.
// If the lookup fails every entry is treated as changed.
func (e *Engine) diff(ctx context.Context, batch []models.CatalogEntry) []models.CatalogEntry {
	ids := make([]string, len(batch))
	for i := range batch {
		ids[i] = batch[i].Identifier
	}

	existing, err := e.store.ExistingLastModified(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("batch", len(batch)).Msg("Existing entry lookup failed, writing full batch")
		return batch
	}

	changed := make([]models.CatalogEntry, 0, len(batch))
	for _, entry := range batch {
		stored, ok := existing[entry.Identifier]
		if !ok || stored == nil || (entry.LastModified != nil && *entry.LastModified != *stored) {
			changed = append(changed, entry)
		}
	}
	return changed
}

// upsert writes entries, shrinking the chunk size on store timeouts and
// falling back to single rows on other failures. Caller holds writeMu.
func (e *Engine) upsert(ctx context.Context, entries []models.CatalogEntry) (written int, rejected []models.CatalogEntry, lastErr error) {
	size := len(entries)
	shrinks := 0

	for off := 0; off < len(entries); {
		end := min(off+size, len(entries))
		chunk := entries[off:end]

		n, err := e.store.UpsertCatalogEntries(ctx, chunk)
		switch {
		case err == nil:
			written += n
			off = end

		case ctx.Err() != nil:
			return written, append(rejected, entries[off:]...), ctx.Err()

		case models.IsStoreTimeout(err) && size > e.minBatchSize && shrinks < e.maxShrink:
			size = max(size/2, e.minBatchSize)
			shrinks++
			metrics.RecordBatchShrink()
			logging.Ctx(ctx).Warn().Err(err).Int("batch_size", size).Int("attempt", shrinks).Msg("Store timeout, shrinking batch")

		case models.IsStoreTimeout(err):
			return written, append(rejected, entries[off:]...), err

		default:
			ok, failed := e.upsertRows(ctx, chunk)
			written += ok
			if len(failed) > 0 {
				rejected = append(rejected, failed...)
				lastErr = err
			}
			off = end
		}
	}

	return written, rejected, lastErr
}

func (e *Engine) upsertRows(ctx context.Context, rows []models.CatalogEntry) (written int, failed []models.CatalogEntry) {
	for _, row := range rows {
		if err := e.store.UpsertCatalogEntry(ctx, row); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("identifier", row.Identifier).Msg("Single-row upsert failed")
			failed = append(failed, row)
			continue
		}
		written++
	}
	return written, failed
}

// retryFailed gives every failed batch one more attempt with the retry
// batch size and pacing. It returns the batches that still failed.
func (e *Engine) retryFailed(ctx context.Context, failed []failedBatch, result *models.SyncResult) []models.BatchRef {
	still := []models.BatchRef{}
	pace := newPacer(e.retryDelay)

	for _, fb := range failed {
		if ctx.Err() != nil {
			still = append(still, fb.ref)
			continue
		}

		if fb.ref.Offset < 0 {
			entries, err := e.loadSitemap(ctx, fb.ref.SitemapURL)
			if err != nil {
				ref := fb.ref
				ref.Reason = err.Error()
				still = append(still, ref)
				continue
			}
			for _, r := range e.processSitemap(ctx, fb.ref.SitemapURL, entries, e.retryBatchSize, pace, result) {
				still = append(still, r.ref)
			}
			continue
		}

		if remaining := e.processSitemap(ctx, fb.ref.SitemapURL, fb.entries, e.retryBatchSize, pace, result); len(remaining) > 0 {
			ref := fb.ref
			ref.Reason = remaining[len(remaining)-1].ref.Reason
			still = append(still, ref)
		}
	}

	if len(still) > 0 {
		logging.Ctx(ctx).Warn().Int("failed_batches", len(still)).Msg("Batches still failing after retry")
	}
	return still
}

func (e *Engine) countEntries(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	n, err := e.store.CountCatalogEntries(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count catalog entries")
		return 0
	}
	return n
}

// writeStatus persists status even when ctx is already cancelled.
func (e *Engine) writeStatus(ctx context.Context, status models.SyncStatus) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	if err := e.store.SetSyncStatus(ctx, status); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("state", string(status.State)).Msg("Failed to record sync status")
	}
}

// newPacer returns a limiter allowing one batch per delay, or unlimited when delay <= 0.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

func errReason(err error) string {
	if err == nil {
		return "rows rejected"
	}
	return err.Error()
}
