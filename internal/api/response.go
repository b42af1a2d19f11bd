// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wikithat/internal/logging"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError is the error half of the envelope. Code is machine-readable.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta carries tracing and timing data. Cached is set on responses that
// can be served from the content cache.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Cached     *bool     `json:"cached,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed    = "VALIDATION_ERROR"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

// ResponseWriter writes enveloped responses for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// SuccessCached writes a 200 response and reports whether data came from
// the cache, both in meta and as an X-Cache header.
func (rw *ResponseWriter) SuccessCached(data interface{}, cached bool) {
	header := "MISS"
	if cached {
		header = "HIT"
	}
	rw.w.Header().Set("X-Cache", header)

	meta := rw.meta()
	meta.Cached = &cached
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// Created writes a 201 response with data.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// Accepted writes a 202 response for work started in the background.
func (rw *ResponseWriter) Accepted(data interface{}) {
	rw.writeJSON(http.StatusAccepted, APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	meta := rw.meta()
	rw.writeJSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict writes a 409 Conflict error.
func (rw *ResponseWriter) Conflict(message string) {
	rw.Error(http.StatusConflict, ErrCodeConflict, message)
}

// TooManyRequests writes a 429 error. resetAt is reported in details.
func (rw *ResponseWriter) TooManyRequests(message string, resetAt time.Time) {
	var details interface{}
	if !resetAt.IsZero() {
		details = map[string]interface{}{"reset_at": resetAt.UTC()}
	}
	rw.ErrorWithDetails(http.StatusTooManyRequests, ErrCodeTooManyRequests, message, details)
}

// ServiceUnavailable writes a 503 Service Unavailable error.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// ValidationError writes a 400 error with validation details.
func (rw *ResponseWriter) ValidationError(message string, details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, message, details)
}

// InternalError writes a 500 error and logs err.
func (rw *ResponseWriter) InternalError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Str("path", rw.r.URL.Path).Msg("Request failed")
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred")
}

// DatabaseError writes a 500 error for store failures.
func (rw *ResponseWriter) DatabaseError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Str("path", rw.r.URL.Path).Msg("Database error")
	rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred")
}

// ExternalServiceError writes a 502 error for a transient upstream failure.
func (rw *ResponseWriter) ExternalServiceError(err error) {
	logging.Ctx(rw.r.Context()).Warn().Err(err).Str("path", rw.r.URL.Path).Msg("Upstream fetch failed")
	rw.Error(http.StatusBadGateway, ErrCodeExternalServiceFail, "Upstream source unavailable, try again")
}

func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
