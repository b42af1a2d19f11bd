// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrRateLimited is returned when a caller has exhausted its quota.
var ErrRateLimited = errors.New("rate limit exceeded")

// TransientFetchError is a network, timeout or upstream 5xx/429 failure.
// It is never fatal to the pipeline; callers retry or skip.
type TransientFetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransientFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// Temporary reports that the failure may succeed on retry.
func (e *TransientFetchError) Temporary() bool { return true }

// NotFoundError means the remote has no such resource. It is a normal
// "no data" outcome, not a failure.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// StoreWriteError is a rejected persistence write.
type StoreWriteError struct {
	Table string
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Table, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// Timeout reports whether the write failed because a deadline passed.
// The sync engine halves its batch size on timeouts.
func (e *StoreWriteError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// ConfigurationError means a collaborator lacks required settings.
// Only the affected component is disabled.
type ConfigurationError struct {
	Component string
	Setting   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: %s is required", e.Component, e.Setting)
}

// SyncFailedError is a fatal catalog sync failure, such as an unreadable index.
type SyncFailedError struct {
	Err error
}

func (e *SyncFailedError) Error() string {
	return fmt.Sprintf("catalog sync failed: %v", e.Err)
}

func (e *SyncFailedError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a TransientFetchError.
func IsTransient(err error) bool {
	var te *TransientFetchError
	return errors.As(err, &te)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsStoreTimeout reports whether err is a StoreWriteError caused by a timeout.
func IsStoreTimeout(err error) bool {
	var se *StoreWriteError
	return errors.As(err, &se) && se.Timeout()
}
