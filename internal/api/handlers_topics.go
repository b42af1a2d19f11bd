// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/validation"
)

// ResolveResponse is the body of GET /resolve.
type ResolveResponse struct {
	Topic      string `json:"topic"`
	Identifier string `json:"identifier"`
}

// MappingResponse is the body of POST /topic-mapping.
type MappingResponse struct {
	Action models.MappingOutcome `json:"action"`
}

// Resolve handles GET /api/v1/resolve?topic=
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := TopicQuery{Topic: r.URL.Query().Get("topic")}
	if !validateRequest(rw, &req) {
		return
	}
	topic, err := validation.SanitizeInput(req.Topic, validation.DefaultMaxInputLength)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	rw.Success(ResolveResponse{Topic: topic, Identifier: h.resolver.Resolve(r.Context(), topic)})
}

// SearchMappings handles GET /api/v1/topic-mapping?q=
// Queries shorter than two characters return an empty list.
func (h *Handler) SearchMappings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := MappingSearchQuery{
		Q:     r.URL.Query().Get("q"),
		Limit: intParam(r, "limit", 0),
	}
	if !validateRequest(rw, &req) {
		return
	}

	entries, err := h.resolver.SearchIndex(r.Context(), req.Q, req.Limit)
	if err != nil {
		writeServiceError(rw, err, rw.DatabaseError)
		return
	}
	rw.Success(entries)
}

// SaveMapping handles POST /api/v1/topic-mapping
func (h *Handler) SaveMapping(w http.ResponseWriter, r *http.Request) {
	var req SaveMappingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	outcome, err := h.resolver.SaveMapping(r.Context(), req.WikipediaTopic, req.GrokipediaSlug)
	if err != nil {
		writeServiceError(rw, err, rw.DatabaseError)
		return
	}

	if outcome == models.MappingCreated {
		rw.Created(MappingResponse{Action: outcome})
		return
	}
	rw.Success(MappingResponse{Action: outcome})
}

// Suggest handles GET /api/v1/suggest?q=
// Upstream failures degrade to an empty list.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := SuggestQuery{
		Q:     strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: intParam(r, "limit", 0),
	}
	if !validateRequest(rw, &req) {
		return
	}
	if h.suggester == nil || len([]rune(req.Q)) < 2 {
		rw.Success([]string{})
		return
	}

	titles, err := h.suggester.Search(r.Context(), req.Q, req.Limit)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("query", req.Q).Msg("Title suggestions unavailable")
	}
	if titles == nil {
		titles = []string{}
	}
	rw.Success(titles)
}

// intParam parses a query integer, returning def when absent or malformed.
func intParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
