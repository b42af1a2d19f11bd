// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/wikithat/internal/models"
)

// UnknownIdentity is used when a request carries no client address headers.
const UnknownIdentity = "unknown"

// Key builds the counter key for an action and caller, e.g. "verdict_203.0.113.7".
func Key(action, identity string) string {
	return action + "_" + identity
}

// ClientIdentity returns the caller address as reported by the fronting proxy:
// the first X-Forwarded-For entry, then X-Real-IP, then UnknownIdentity.
func ClientIdentity(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownIdentity
}

// Headers writes the X-RateLimit-* headers for a decision.
func Headers(w http.ResponseWriter, d models.RateDecision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}
