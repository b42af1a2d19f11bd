// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package services

import (
	"context"
	"time"

	"github.com/tomtom215/wikithat/internal/logging"
)

// PeriodicService calls a maintenance task every interval until its
// context is canceled. Task errors are logged and do not stop the loop.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
}

// NewPeriodicService creates a periodic task. interval must be positive.
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error) *PeriodicService {
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := p.task(ctx); err != nil {
				logging.Warn().Err(err).Str("service", p.name).Msg("Maintenance task failed")
				continue
			}
			logging.Debug().Str("service", p.name).Dur("duration", time.Since(start)).Msg("Maintenance task completed")
		}
	}
}

func (p *PeriodicService) String() string {
	return p.name
}
