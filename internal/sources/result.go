// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package sources

import (
	"golang.org/x/time/rate"

	"github.com/tomtom215/wikithat/internal/models"
)

// toResult tags a client outcome. Errors other than NotFound become
// Transient so callers see exactly three cases.
func toResult(v *models.Article, err error, op, url string) models.FetchResult[models.Article] {
	switch {
	case err == nil && v != nil:
		return models.Found(*v)
	case err == nil, models.IsNotFound(err):
		return models.Missing[models.Article]()
	case models.IsTransient(err):
		return models.Transient[models.Article](err)
	default:
		return models.Transient[models.Article](&models.TransientFetchError{Op: op, URL: url, Err: err})
	}
}

// newOutboundLimiter returns a limiter allowing rps requests per second,
// or no limit when rps <= 0.
func newOutboundLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
