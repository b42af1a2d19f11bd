// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64

	// FailureBackoff is how long to wait once the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// SupervisorTree is the root supervisor and its data, sync and api layers.
type SupervisorTree struct {
	root   *suture.Supervisor
	data   *suture.Supervisor
	sync   *suture.Supervisor
	api    *suture.Supervisor
	logger *slog.Logger
	config TreeConfig
}

// NewSupervisorTree creates the tree. Zero config fields take defaults.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config = config.withDefaults()

	// MustHook has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}

	spec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = handler.MustHook()

	root := suture.New("wikithat", rootSpec)
	data := suture.New("data-layer", spec)
	syncLayer := suture.New("sync-layer", spec)
	api := suture.New("api-layer", spec)

	root.Add(data)
	root.Add(syncLayer)
	root.Add(api)

	return &SupervisorTree{
		root:   root,
		data:   data,
		sync:   syncLayer,
		api:    api,
		logger: logger,
		config: config,
	}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddDataService adds a storage maintenance service.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.data.Add(svc)
}

// AddSyncService adds a catalog sync service.
func (t *SupervisorTree) AddSyncService(svc suture.Service) suture.ServiceToken {
	return t.sync.Add(svc)
}

// AddAPIService adds an HTTP-facing service.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// RemoveSyncService removes a service added with AddSyncService.
func (t *SupervisorTree) RemoveSyncService(token suture.ServiceToken) error {
	return t.sync.Remove(token)
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The channel receives the
// result when the tree stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
