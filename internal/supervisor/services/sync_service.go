// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle of catalog.Manager.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService runs the catalog sync manager under supervision. Start
// launches the manager's scheduler goroutine; Stop waits for any
// in-flight sync to finish.
type SyncService struct {
	manager StartStopManager
	name    string
}

// NewSyncService wraps manager.
func NewSyncService(manager StartStopManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "catalog-sync",
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("catalog sync start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("catalog sync stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *SyncService) String() string {
	return s.name
}
