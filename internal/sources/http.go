// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/wikithat/internal/models"
)

// DefaultUserAgent identifies outbound requests.
const DefaultUserAgent = "Wikithat.com/1.0"

// maxErrorBodySize limits how much of an error response is read for diagnostics
const maxErrorBodySize = 64 * 1024

// readBodyForError reads at most maxErrorBodySize bytes of r for error reporting
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// StatusError converts a non-2xx response into a typed error: 404 becomes
// NotFoundError, 429 and 5xx become TransientFetchError, anything else is
// a plain error. resource and key describe the missing thing for 404s.
func StatusError(op, url string, resp *http.Response, resource, key string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &models.NotFoundError{Resource: resource, Key: key}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &models.TransientFetchError{
			Op:         op,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBodyForError(resp.Body)),
		}
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, readBodyForError(resp.Body))
	}
}

// TransportError wraps a failed round trip. Cancellation of the caller's
// context is returned as-is; anything else is transient.
func TransportError(ctx context.Context, op, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &models.TransientFetchError{Op: op, URL: url, Err: err}
}

// NewHTTPClient returns a client with the given timeout, or 30s if timeout <= 0.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
