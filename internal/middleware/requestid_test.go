// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/wikithat/internal/logging"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generates when absent", "", false},
		{"preserves upstream id", "existing-request-id-12345", true},
		{"replaces oversized id", strings.Repeat("a", maxRequestIDLength+1), false},
		{"replaces whitespace id", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedID, correlationID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedID = GetRequestID(r.Context())
				correlationID = logging.CorrelationIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			responseID := rec.Header().Get(RequestIDHeader)
			if responseID == "" || responseID != capturedID {
				t.Fatalf("header %q, context %q", responseID, capturedID)
			}
			if tt.wantSame {
				if responseID != tt.incoming {
					t.Errorf("X-Request-ID = %q, want %q", responseID, tt.incoming)
				}
			} else if _, err := uuid.Parse(responseID); err != nil {
				t.Errorf("X-Request-ID %q is not a UUID: %v", responseID, err)
			}
			if correlationID == "" {
				t.Error("expected a correlation id in context")
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}
