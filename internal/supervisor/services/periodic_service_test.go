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
)

func TestPeriodicService(t *testing.T) {
	var runs atomic.Int32
	svc := NewPeriodicService("duckdb-checkpoint", 5*time.Millisecond, func(context.Context) error {
		// Failing runs must not end the loop.
		if runs.Add(1)%2 == 1 {
			return errors.New("checkpoint failed")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if runs.Load() < 3 {
		t.Errorf("task runs = %d, want >= 3", runs.Load())
	}
	if svc.String() != "duckdb-checkpoint" {
		t.Errorf("String() = %q", svc.String())
	}
}
