// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package models

import "time"

// CatalogEntry is one page of the remote catalog.
// Identifier is the case-sensitive natural key. NormalizedKey is derived and
// not unique; several identifiers may share one key.
type CatalogEntry struct {
	Identifier    string  `json:"identifier"`
	DisplayTitle  *string `json:"display_title,omitempty"`
	LastModified  *string `json:"last_modified,omitempty"`
	NormalizedKey string  `json:"normalized_key"`
}

// SyncState is the lifecycle state of the catalog sync.
type SyncState string

// Sync states
const (
	SyncIdle      SyncState = "idle"
	SyncRunning   SyncState = "running"
	SyncCompleted SyncState = "completed"
	SyncFailed    SyncState = "failed"
)

// SyncStatus is the process-wide sync status record.
type SyncStatus struct {
	State        SyncState  `json:"state"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	TotalEntries int64      `json:"total_entries"`
	LastError    string     `json:"last_error,omitempty"`
}

// BatchRef identifies a slice of one child sitemap's entries.
// Offset -1 marks a sitemap that could not be fetched or parsed at all.
type BatchRef struct {
	SitemapURL string `json:"sitemap_url"`
	Offset     int    `json:"offset"`
	Size       int    `json:"size"`
	Reason     string `json:"reason,omitempty"`
}

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	Inserted      int        `json:"inserted"`
	Skipped       int        `json:"skipped"`
	FailedBatches []BatchRef `json:"failed_batches"`
}
