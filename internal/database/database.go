// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
)

const (
	// defaultQueryTimeout bounds calls whose context carries no deadline.
	defaultQueryTimeout = 30 * time.Second

	memoryPath = ":memory:"
)

// DB is the DuckDB-backed store for the catalog, mappings, content caches,
// sync status and trust votes.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// mappingMu serializes the read-modify-write in SaveTopicMapping.
	mappingMu sync.Mutex

	maxConflictRetries int
	conflictDelay      time.Duration
}

// New opens (creating if needed) the database at cfg.Path and brings the
// schema up to date. Use ":memory:" for an ephemeral database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if err := ensureDir(cfg.Path); err != nil {
		return nil, err
	}

	conn, err := sql.Open("duckdb", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:               conn,
		cfg:                cfg,
		maxConflictRetries: 3,
		conflictDelay:      50 * time.Millisecond,
	}
	db.configureConnectionPool()

	steps := []struct {
		name string
		run  func() error
	}{
		{"create tables", db.createTables},
		{"migrate", db.migrate},
		{"create indexes", db.createIndexes},
		{"seed sync status", db.seedSyncStatus},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("database init (%s): %w", step.name, err)
		}
	}

	if cfg.Profiling {
		db.enableProfiling()
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint after schema setup failed")
	}

	return db, nil
}

func ensureDir(path string) error {
	if path == "" || path == memoryPath {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// dsn appends DuckDB settings to the path. Extension autoloading is off;
// the schema only uses core types.
func dsn(cfg *config.DatabaseConfig) string {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	params := []string{
		"access_mode=read_write",
		fmt.Sprintf("threads=%d", threads),
		"autoinstall_known_extensions=false",
		"autoload_known_extensions=false",
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}
	return cfg.Path + "?" + strings.Join(params, "&")
}

// Conn exposes the pool for callers that need raw SQL.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping reports whether the database answers.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return errors.New("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the DuckDB WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Close checkpoints and closes the pool. A failed checkpoint is only
// logged; DuckDB replays the WAL on the next open.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint before close failed")
	}
	cancel()

	return db.conn.Close()
}

// ensureContext applies defaultQueryTimeout when ctx has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

func (db *DB) enableProfiling() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "PRAGMA enable_profiling"); err != nil {
		logging.Warn().Err(err).Msg("Query profiling not enabled")
		return
	}
	logging.Info().Msg("Query profiling enabled")
}
