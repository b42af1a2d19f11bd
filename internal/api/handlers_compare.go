// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"net/http"

	"github.com/tomtom215/wikithat/internal/ratelimit"
)

// Compare handles GET /api/v1/compare?topic=
// A side that is missing or temporarily unavailable is null; the request
// fails with 502 only when no side could be fetched.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := TopicQuery{Topic: r.URL.Query().Get("topic")}
	if !validateRequest(rw, &req) {
		return
	}

	cmp, err := h.compare.Articles(r.Context(), req.Topic)
	if err != nil {
		writeServiceError(rw, err, rw.InternalError)
		return
	}
	rw.Success(cmp)
}

// Verdict handles POST /api/v1/verdict
// The per-caller verdict quota is checked before the cache, so cached
// verdicts count against it too.
func (h *Handler) Verdict(w http.ResponseWriter, r *http.Request) {
	var req VerdictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	res, err := h.compare.Verdict(r.Context(), req.Topic, ratelimit.ClientIdentity(r))
	if res.Decision.Limit > 0 {
		ratelimit.Headers(w, res.Decision)
	}
	if err != nil {
		writeServiceError(rw, err, rw.InternalError)
		return
	}
	rw.SuccessCached(map[string]string{"verdict": res.Verdict}, res.Cached)
}

// TrustVotes handles GET /api/v1/trust-vote?topic=
func (h *Handler) TrustVotes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := TopicQuery{Topic: r.URL.Query().Get("topic")}
	if !validateRequest(rw, &req) {
		return
	}

	counts, err := h.compare.Votes(r.Context(), req.Topic)
	if err != nil {
		writeServiceError(rw, err, rw.DatabaseError)
		return
	}
	rw.Success(counts)
}

// TrustVote handles POST /api/v1/trust-vote
func (h *Handler) TrustVote(w http.ResponseWriter, r *http.Request) {
	var req TrustVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	res, err := h.compare.Vote(r.Context(), req.Topic, req.Source, ratelimit.ClientIdentity(r))
	if res.Decision.Limit > 0 {
		ratelimit.Headers(w, res.Decision)
	}
	if err != nil {
		writeServiceError(rw, err, rw.DatabaseError)
		return
	}
	rw.Success(res)
}

// GrokipediaArticle handles GET /api/v1/grokipedia/article?slug=
func (h *Handler) GrokipediaArticle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := SlugQuery{Slug: r.URL.Query().Get("slug")}
	if !validateRequest(rw, &req) {
		return
	}

	article, decision, err := h.compare.GrokipediaArticle(r.Context(), req.Slug, ratelimit.ClientIdentity(r))
	if decision.Limit > 0 {
		ratelimit.Headers(w, decision)
	}
	if err != nil {
		writeServiceError(rw, err, rw.InternalError)
		return
	}
	rw.Success(article)
}

// CheckSlug handles GET /api/v1/slugs/check?slug=
func (h *Handler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := SlugQuery{Slug: r.URL.Query().Get("slug")}
	if !validateRequest(rw, &req) {
		return
	}

	check, err := h.compare.CheckSlug(r.Context(), req.Slug)
	if err != nil {
		writeServiceError(rw, err, rw.DatabaseError)
		return
	}
	rw.Success(check)
}

// CheckSlugs handles POST /api/v1/slugs/check
func (h *Handler) CheckSlugs(w http.ResponseWriter, r *http.Request) {
	var req SlugsCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	checks, err := h.compare.CheckSlugs(r.Context(), req.Slugs)
	if err != nil {
		writeServiceError(rw, err, rw.DatabaseError)
		return
	}
	rw.Success(map[string]interface{}{"results": checks})
}
