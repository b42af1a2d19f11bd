// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
manager.go - Catalog Sync Scheduling

Manager owns the sync lifecycle around an Engine:
  - Start: optional initial sync plus a periodic ticker (interval 0 = manual only)
  - Stop: signals background goroutines and waits for them
  - TriggerSync: run a sync now and wait for the result
  - TriggerAsync: start a sync in the background, for HTTP triggers
  - SetOnSyncCompleted: hook run after each successful sync, used to
    invalidate the resolver memo

Overlapping requests are rejected with ErrSyncInProgress instead of queued.
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
)

// Syncer runs one catalog sync.
type Syncer interface {
	Sync(ctx context.Context) (models.SyncResult, error)
}

// Manager schedules catalog syncs.
type Manager struct {
	syncer      Syncer
	interval    time.Duration
	syncOnStart bool

	mu          sync.RWMutex
	syncMu      sync.Mutex
	running     bool
	lastSync    time.Time
	lastResult  models.SyncResult
	stopChan    chan struct{}
	runCtx      context.Context
	wg          sync.WaitGroup
	onCompleted func(models.SyncResult)
}

// NewManager creates a manager for syncer using the schedule in cfg.
func NewManager(syncer Syncer, cfg *config.CatalogConfig) *Manager {
	return &Manager{
		syncer:      syncer,
		interval:    cfg.SyncInterval,
		syncOnStart: cfg.SyncOnStart,
		stopChan:    make(chan struct{}),
		runCtx:      context.Background(),
	}
}

// SetOnSyncCompleted registers fn to run after every successful sync.
func (m *Manager) SetOnSyncCompleted(fn func(models.SyncResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCompleted = fn
}

// Start launches the background schedule. It returns immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("catalog sync manager is already running")
	}
	m.running = true
	m.runCtx = ctx
	// Fresh channel so a supervisor restart after Stop schedules again.
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.mu.Unlock()

	logging.Info().Dur("interval", m.interval).Bool("sync_on_start", m.syncOnStart).Msg("Starting catalog sync manager...")

	if m.syncOnStart {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if _, err := m.TriggerSync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
				logging.Warn().Err(err).Msg("Initial catalog sync failed (will retry on schedule)")
			}
		}()
	}

	if m.interval > 0 {
		m.wg.Add(1)
		go m.syncLoop(ctx, stop)
	}

	return nil
}

// Stop signals background goroutines to exit and waits for them. A sync in
// progress finishes only if its context is cancelled by the caller of Start.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("catalog sync manager is not running")
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping catalog sync manager...")
	m.wg.Wait()
	logging.Info().Msg("Catalog sync manager stopped")

	return nil
}

func (m *Manager) syncLoop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := m.TriggerSync(ctx); err != nil {
				if errors.Is(err, ErrSyncInProgress) {
					logging.Info().Msg("Scheduled catalog sync skipped, previous run still in progress")
					continue
				}
				logging.Error().Err(err).Msg("Scheduled catalog sync failed")
			}
		}
	}
}

// TriggerSync runs a sync and waits for it. It returns ErrSyncInProgress
// without waiting if another sync holds the manager.
func (m *Manager) TriggerSync(ctx context.Context) (models.SyncResult, error) {
	if !m.syncMu.TryLock() {
		return models.SyncResult{}, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()

	return m.runSync(ctx)
}

// TriggerAsync starts a sync in the background on the manager's lifecycle
// context and returns at once. It returns ErrSyncInProgress if a sync is
// already running.
func (m *Manager) TriggerAsync() error {
	if !m.syncMu.TryLock() {
		return ErrSyncInProgress
	}

	m.mu.RLock()
	ctx := m.runCtx
	m.mu.RUnlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.syncMu.Unlock()

		ctx := logging.ContextWithNewCorrelationID(ctx)
		if _, err := m.runSync(ctx); err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Triggered catalog sync failed")
		}
	}()
	return nil
}

// runSync must be called with syncMu held.
func (m *Manager) runSync(ctx context.Context) (models.SyncResult, error) {
	result, err := m.syncer.Sync(ctx)
	if err != nil {
		return result, err
	}

	m.mu.Lock()
	m.lastSync = time.Now()
	m.lastResult = result
	hook := m.onCompleted
	m.mu.Unlock()

	if hook != nil {
		hook(result)
	}
	return result, nil
}

// IsSyncing reports whether a sync started by this manager is running.
func (m *Manager) IsSyncing() bool {
	if m.syncMu.TryLock() {
		m.syncMu.Unlock()
		return false
	}
	return true
}

// IsRunning reports whether the background schedule is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastSyncTime returns the time of the last successful sync.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastResult returns the result of the last successful sync.
func (m *Manager) LastResult() models.SyncResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastResult
}
