// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
)

// Breaker trip policy. A breaker opens once at least breakerMinRequests
// calls in the current interval fail at breakerTripRatio or worse.
const (
	breakerMinRequests = 10
	breakerTripRatio   = 0.6
	breakerHalfOpenMax = 3
	breakerInterval    = time.Minute
	breakerOpenTimeout = 2 * time.Minute
)

// Breaker guards one remote service with a circuit breaker. NotFound and
// caller cancellation count as successes; a missing page says nothing
// about the health of the remote.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[interface{}]
}

// NewBreaker creates a circuit breaker named name and publishes its initial state.
func NewBreaker(name string) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:          name,
		MaxRequests:   breakerHalfOpenMax,
		Interval:      breakerInterval,
		Timeout:       breakerOpenTimeout,
		ReadyToTrip:   tripPolicy(name),
		IsSuccessful:  healthySignal,
		OnStateChange: recordTransition,
	})
	return &Breaker{name: name, cb: cb}
}

func tripPolicy(name string) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		if c.Requests < breakerMinRequests {
			return false
		}
		ratio := float64(c.TotalFailures) / float64(c.Requests)
		if ratio < breakerTripRatio {
			return false
		}
		logging.Warn().Str("breaker", name).Uint32("failures", c.TotalFailures).Uint32("requests", c.Requests).Msg("Opening circuit")
		return true
	}
}

func healthySignal(err error) bool {
	return err == nil || models.IsNotFound(err) || errors.Is(err, context.Canceled)
}

// recordTransition publishes state changes. The gauge holds gobreaker's
// numeric state: 0 closed, 1 half-open, 2 open.
func recordTransition(name string, from, to gobreaker.State) {
	logging.Info().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("Circuit state changed")
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

// Name returns the breaker name used in logs and metrics.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		logging.Warn().Err(err).Str("breaker", b.name).Msg("Circuit open, request rejected")
		// A rejected call is retryable once the breaker half-opens.
		return nil, &models.TransientFetchError{Op: b.name, Err: err}
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// Execute runs fn under b and returns its typed result.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}
