// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/models"
)

// stubSyncer counts runs and optionally blocks until released.
type stubSyncer struct {
	runs    atomic.Int32
	err     error
	entered chan struct{}
	release chan struct{}
}

func (s *stubSyncer) Sync(ctx context.Context) (models.SyncResult, error) {
	s.runs.Add(1)
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return models.SyncResult{}, ctx.Err()
		}
	}
	return models.SyncResult{Inserted: 3}, s.err
}

func TestManager_TriggerSync(t *testing.T) {
	syncer := &stubSyncer{}
	m := NewManager(syncer, &config.CatalogConfig{})

	var hookCalls atomic.Int32
	m.SetOnSyncCompleted(func(r models.SyncResult) {
		if r.Inserted != 3 {
			t.Errorf("hook result = %+v", r)
		}
		hookCalls.Add(1)
	})

	result, err := m.TriggerSync(context.Background())
	if err != nil || result.Inserted != 3 {
		t.Fatalf("TriggerSync() = %+v, %v", result, err)
	}
	if hookCalls.Load() != 1 {
		t.Errorf("hook calls = %d, want 1", hookCalls.Load())
	}
	if m.LastSyncTime().IsZero() {
		t.Error("LastSyncTime should be set after a successful sync")
	}
	if m.LastResult().Inserted != 3 {
		t.Errorf("LastResult() = %+v", m.LastResult())
	}
}

func TestManager_FailedSyncSkipsHook(t *testing.T) {
	syncer := &stubSyncer{err: errors.New("boom")}
	m := NewManager(syncer, &config.CatalogConfig{})

	called := false
	m.SetOnSyncCompleted(func(models.SyncResult) { called = true })

	if _, err := m.TriggerSync(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("hook must not run after a failed sync")
	}
	if !m.LastSyncTime().IsZero() {
		t.Error("LastSyncTime must not advance on failure")
	}
}

func TestManager_TriggerAsyncRejectsOverlap(t *testing.T) {
	syncer := &stubSyncer{entered: make(chan struct{}, 1), release: make(chan struct{})}
	m := NewManager(syncer, &config.CatalogConfig{})

	if err := m.TriggerAsync(); err != nil {
		t.Fatalf("TriggerAsync() error = %v", err)
	}
	<-syncer.entered

	if !m.IsSyncing() {
		t.Error("IsSyncing() = false while a sync runs")
	}
	if err := m.TriggerAsync(); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("second TriggerAsync() = %v, want ErrSyncInProgress", err)
	}
	if _, err := m.TriggerSync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("TriggerSync() during async run = %v, want ErrSyncInProgress", err)
	}

	close(syncer.release)
	deadline := time.Now().Add(2 * time.Second)
	for m.IsSyncing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.IsSyncing() {
		t.Fatal("sync did not finish")
	}
	if syncer.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", syncer.runs.Load())
	}
}

func TestManager_StartStop(t *testing.T) {
	syncer := &stubSyncer{}
	m := NewManager(syncer, &config.CatalogConfig{SyncInterval: 10 * time.Millisecond, SyncOnStart: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if !m.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for syncer.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if syncer.runs.Load() < 2 {
		t.Errorf("runs = %d, want initial plus scheduled", syncer.runs.Load())
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("second Stop() should fail")
	}
	if m.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestManager_ZeroIntervalIsManualOnly(t *testing.T) {
	syncer := &stubSyncer{}
	m := NewManager(syncer, &config.CatalogConfig{})

	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	if n := syncer.runs.Load(); n != 0 {
		t.Errorf("runs = %d, want 0 without interval or sync-on-start", n)
	}
}

func TestManager_RestartAfterStop(t *testing.T) {
	syncer := &stubSyncer{}
	m := NewManager(syncer, &config.CatalogConfig{SyncInterval: 5 * time.Millisecond})

	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	before := syncer.runs.Load()

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for syncer.runs.Load() == before && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	if syncer.runs.Load() == before {
		t.Error("scheduled sync did not run after restart")
	}
}
