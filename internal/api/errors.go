// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wikithat/internal/catalog"
	"github.com/tomtom215/wikithat/internal/compare"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// badInput lists service errors that mean the caller sent something unusable.
var badInput = []error{
	validation.ErrEmptyInput,
	compare.ErrInvalidSlug,
	compare.ErrInvalidSource,
	compare.ErrInvalidURL,
	compare.ErrNoSlugs,
	compare.ErrTooManySlugs,
}

// writeServiceError maps a service error to a response. Errors outside the
// known taxonomy are written by fallback.
func writeServiceError(rw *ResponseWriter, err error, fallback func(error)) {
	if rw.r.Context().Err() != nil {
		// Client went away; nothing useful can be written.
		logging.Ctx(rw.r.Context()).Debug().Err(err).Msg("Request canceled")
		return
	}

	for _, target := range badInput {
		if errors.Is(err, target) {
			rw.BadRequest(err.Error())
			return
		}
	}

	var storeErr *models.StoreWriteError
	switch {
	case errors.Is(err, models.ErrRateLimited):
		rw.TooManyRequests("Rate limit exceeded, try again later", resetFromHeaders(rw))
	case errors.Is(err, catalog.ErrSyncInProgress):
		rw.Conflict("A catalog sync is already running")
	case models.IsConfiguration(err):
		logging.Ctx(rw.r.Context()).Warn().Err(err).Msg("Feature not configured")
		rw.ServiceUnavailable(err.Error())
	case models.IsNotFound(err):
		rw.NotFound(err.Error())
	case models.IsTransient(err):
		rw.ExternalServiceError(err)
	case errors.As(err, &storeErr):
		rw.DatabaseError(err)
	default:
		fallback(err)
	}
}

// decodeBody decodes a bounded JSON body into v and validates it. On failure
// it writes the 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}
	return validateRequest(rw, v)
}

// validateRequest validates v and writes a VALIDATION_ERROR response on failure.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
	return false
}

// resetFromHeaders returns the quota reset already written by
// ratelimit.Headers, or the zero time.
func resetFromHeaders(rw *ResponseWriter) time.Time {
	v := rw.w.Header().Get("X-RateLimit-Reset")
	if v == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
