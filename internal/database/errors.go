// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package database

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
)

// closeWithLog closes c and logs a failure as a warning tagged with what.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("resource", what).Msg("Close failed")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// timeoutError marks DuckDB interrupt errors as timeouts so
// models.StoreWriteError.Timeout reports them.
type timeoutError struct{ err error }

func (e timeoutError) Error() string { return e.err.Error() }
func (e timeoutError) Unwrap() error { return e.err }
func (e timeoutError) Timeout() bool { return true }

// writeError wraps a failed write as a StoreWriteError.
// A deadline or a DuckDB interrupt triggered by context cancellation is a timeout.
func writeError(table string, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, context.DeadlineExceeded) && isInterrupt(err) {
		err = timeoutError{err: err}
	}
	return &models.StoreWriteError{Table: table, Err: err}
}

func isInterrupt(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "INTERRUPT Error") || strings.Contains(msg, "Interrupted")
}
