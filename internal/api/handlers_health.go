// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"context"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	SyncRunning       bool       `json:"sync_running"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	Uptime            float64    `json:"uptime"`
}

// Health reports a summary: degraded when the store does not answer.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.pingStore(r.Context())

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	health := HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.sync != nil {
		health.SyncRunning = h.sync.IsSyncing()
		if last := h.sync.LastSyncTime(); !last.IsZero() {
			health.LastSyncTime = &last
		}
	}

	NewResponseWriter(w, r).Success(health)
}

// HealthLive returns 200 while the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 only when the store answers a ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.pingStore(r.Context()) {
		rw.ServiceUnavailable("database not ready")
		return
	}
	rw.Success(map[string]interface{}{"ready": true})
}

func (h *Handler) pingStore(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}
