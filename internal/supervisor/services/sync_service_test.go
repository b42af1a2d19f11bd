// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type stubManager struct {
	starts   atomic.Int32
	stops    atomic.Int32
	startErr error
	stopErr  error
}

func (m *stubManager) Start(context.Context) error {
	m.starts.Add(1)
	return m.startErr
}

func (m *stubManager) Stop() error {
	m.stops.Add(1)
	return m.stopErr
}

var _ suture.Service = (*SyncService)(nil)

func TestSyncService_Serve(t *testing.T) {
	tests := []struct {
		name      string
		startErr  error
		stopErr   error
		wantErr   error
		wantStops int32
	}{
		{name: "clean stop", wantErr: context.Canceled, wantStops: 1},
		{name: "start failure", startErr: errors.New("already running"), wantStops: 0},
		{name: "stop failure", stopErr: errors.New("not running"), wantStops: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := &stubManager{startErr: tt.startErr, stopErr: tt.stopErr}
			svc := NewSyncService(mgr)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			deadline := time.Now().Add(time.Second)
			for mgr.starts.Load() == 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			err := <-errCh
			switch {
			case tt.startErr != nil:
				if !errors.Is(err, tt.startErr) {
					t.Errorf("Serve() = %v, want %v", err, tt.startErr)
				}
			case tt.stopErr != nil:
				if !errors.Is(err, tt.stopErr) {
					t.Errorf("Serve() = %v, want %v", err, tt.stopErr)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Serve() = %v, want %v", err, tt.wantErr)
				}
			}
			if got := mgr.stops.Load(); got != tt.wantStops {
				t.Errorf("Stop calls = %d, want %d", got, tt.wantStops)
			}
		})
	}
}

func TestSyncService_RestartedOnStartFailure(t *testing.T) {
	mgr := &stubManager{startErr: errors.New("boom")}
	sup := suture.New("test", suture.Spec{FailureThreshold: 10, FailureBackoff: 10 * time.Millisecond, Timeout: time.Second})
	sup.Add(NewSyncService(mgr))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for mgr.starts.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh

	if mgr.starts.Load() < 2 {
		t.Errorf("Start calls = %d, want restarts", mgr.starts.Load())
	}
	if got := NewSyncService(mgr).String(); got != "catalog-sync" {
		t.Errorf("String() = %q", got)
	}
}
