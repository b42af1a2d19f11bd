// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
)

// SyncStatusResponse is the body of GET /sync/status: the persisted record
// plus what this process knows about its own manager.
type SyncStatusResponse struct {
	models.SyncStatus
	Syncing      bool       `json:"syncing"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// SyncStatus handles GET /api/v1/sync/status
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status, err := h.store.GetSyncStatus(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	resp := SyncStatusResponse{SyncStatus: status}
	if h.sync != nil {
		resp.Syncing = h.sync.IsSyncing()
		if last := h.sync.LastSyncTime(); !last.IsZero() {
			resp.LastSyncTime = &last
		}
	}
	rw.Success(resp)
}

// TriggerSync handles POST /api/v1/sync/trigger
// The sync runs in the background; 409 is returned while one is running.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.sync == nil {
		rw.ServiceUnavailable("catalog sync is not enabled")
		return
	}
	if err := h.sync.TriggerAsync(); err != nil {
		writeServiceError(rw, err, rw.InternalError)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Catalog sync triggered via API")
	rw.Accepted(map[string]string{"status": "started"})
}
