// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package ratelimit

import (
	"context"
	"time"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
)

// Default quota: 10 calls per 60 seconds per caller.
const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

// Action names used as key prefixes and metric labels.
const (
	ActionVerdict   = "verdict"
	ActionScrape    = "scrape"
	ActionTrustVote = "trust_vote"
)

// Limiter enforces a fixed-window quota over a Store.
type Limiter struct {
	action   string
	store    Store
	limit    int
	window   time.Duration
	failOpen bool
	now      func() time.Time
}

// NewLimiter creates a limiter that allows the call when the store fails.
func NewLimiter(action string, store Store, limit int, window time.Duration) *Limiter {
	return newLimiter(action, store, limit, window, true)
}

// NewVerdictLimiter creates the verdict-path limiter. It denies the call
// when the store fails.
func NewVerdictLimiter(store Store, limit int, window time.Duration) *Limiter {
	return newLimiter(ActionVerdict, store, limit, window, false)
}

func newLimiter(action string, store Store, limit int, window time.Duration, failOpen bool) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		action:   action,
		store:    store,
		limit:    limit,
		window:   window,
		failOpen: failOpen,
		now:      time.Now,
	}
}

// Action returns the action name this limiter guards.
func (l *Limiter) Action() string { return l.action }

// Limit returns the per-window quota.
func (l *Limiter) Limit() int { return l.limit }

// FailOpen reports whether store errors allow the call.
func (l *Limiter) FailOpen() bool { return l.failOpen }

// Allow counts one call against key and reports whether it fits the quota.
// The counter is incremented even when the call is denied.
func (l *Limiter) Allow(ctx context.Context, key string) (models.RateDecision, error) {
	count, resetAt, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		metrics.RecordRateLimitStoreError(l.action, l.failOpen)
		if l.failOpen {
			logging.Ctx(ctx).Warn().Err(err).Str("action", l.action).Msg("Rate limit store unavailable, allowing request")
			return models.RateDecision{
				Allowed:   true,
				Limit:     l.limit,
				Remaining: l.limit,
				ResetAt:   l.now().Add(l.window),
			}, nil
		}
		return models.RateDecision{
			Allowed: false,
			Limit:   l.limit,
			ResetAt: l.now().Add(l.window),
		}, err
	}

	d := models.RateDecision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(0, l.limit-count),
		ResetAt:   resetAt,
	}
	metrics.RecordRateLimitDecision(l.action, d.Allowed)
	return d, nil
}
