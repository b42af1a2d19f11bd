// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/wikithat/internal/config"
)

// Store atomically increments the counter for key in its current window and
// returns the post-increment count and when the window resets. A key with no
// live window starts a new one at count 1.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// OpenStore builds the Store selected by cfg.Store. The returned BadgerStore
// is nil for the memory backend; callers close it and schedule its GC.
func OpenStore(cfg *config.RateLimitConfig) (Store, *BadgerStore, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(cfg.MaxKeys), nil, nil
	case "badger":
		bs, err := OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return bs, bs, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit store %q", cfg.Store)
	}
}

// DefaultMaxKeys bounds MemoryStore when no cap is configured.
const DefaultMaxKeys = 100000

// sweepInterval is the minimum spacing between full scans for reset windows.
const sweepInterval = time.Second

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	maxKeys int
	now     func() time.Time

	lastSweep time.Time
}

// NewMemoryStore creates a MemoryStore holding at most maxKeys live windows.
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &MemoryStore{
		entries: make(map[string]*windowEntry),
		maxKeys: maxKeys,
		now:     time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	e, ok := s.entries[key]
	switch {
	case ok && !now.Before(e.resetAt):
		e.count, e.resetAt = 0, now.Add(window)
	case !ok:
		if len(s.entries) >= s.maxKeys {
			s.sweep(now)
		}
		if len(s.entries) >= s.maxKeys {
			s.evictOldest()
		}
		e = &windowEntry{resetAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++

	return e.count, e.resetAt, nil
}

// Len returns the number of tracked windows, including reset ones not yet
// swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep drops windows that have reset. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	s.lastSweep = now
	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
		}
	}
}

// evictOldest drops the window closest to reset. Caller holds mu.
func (s *MemoryStore) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range s.entries {
		if !found || e.resetAt.Before(oldest) {
			oldestKey, oldest, found = k, e.resetAt, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}
