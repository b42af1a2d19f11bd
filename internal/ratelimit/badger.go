// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/wikithat/internal/logging"
)

const (
	badgerKeyPrefix = "ratelimit:"

	// maxConflictRetries bounds retries of a transaction that lost a race
	// with another writer on the same key. Each round commits at least one writer.
	maxConflictRetries = 32
)

// windowRecord is the persisted form of one counter window.
type windowRecord struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// BadgerStore is a Store backed by BadgerDB. Counters survive restarts and
// are shared by every limiter in the process. Badger locks its directory, so
// one process owns a given path.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	now    func() time.Time
}

// OpenBadgerStore opens (or creates) a badger directory for rate-limit counters.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create rate limit directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open rate limit store: %w", err)
	}

	return &BadgerStore{db: db, ownsDB: true, now: time.Now}, nil
}

// NewBadgerStoreFromDB wraps an already open database. Close does not close it.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

// SetClock replaces the time source. Intended for tests.
func (s *BadgerStore) SetClock(now func() time.Time) {
	s.now = now
}

// Increment implements Store.
func (s *BadgerStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	var rec windowRecord

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, time.Time{}, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			var txErr error
			rec, txErr = s.incrementTxn(txn, []byte(badgerKeyPrefix+key), window)
			return txErr
		})
		if err == nil {
			return rec.Count, rec.ResetAt, nil
		}
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return 0, time.Time{}, fmt.Errorf("increment %s: %w", key, err)
		}
	}
}

func (s *BadgerStore) incrementTxn(txn *badger.Txn, key []byte, window time.Duration) (windowRecord, error) {
	now := s.now()
	var rec windowRecord

	item, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return rec, err
	default:
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return rec, fmt.Errorf("decode window: %w", err)
		}
	}

	if rec.Count == 0 || !now.Before(rec.ResetAt) {
		rec = windowRecord{ResetAt: now.Add(window)}
	}
	rec.Count++

	data, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("encode window: %w", err)
	}

	// Badger TTLs have second granularity; the record's ResetAt is authoritative.
	ttl := rec.ResetAt.Sub(now) + time.Second
	return rec, txn.SetEntry(badger.NewEntry(key, data).WithTTL(ttl))
}

// RunGC runs value-log garbage collection until nothing is left to rewrite.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return err
		}
		logging.Debug().Msg("Rate limit store value log GC rewrote a file")
	}
}

// Close closes the underlying database if this store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
