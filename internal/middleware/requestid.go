// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/wikithat/internal/logging"
)

// RequestIDHeader is read from the proxy and echoed back to the client.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps IDs accepted from upstream.
const maxRequestIDLength = 128

// RequestID assigns every request an ID, reusing a sane X-Request-ID from
// the fronting proxy, and stores it in the logging context together with a
// fresh correlation ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}
