// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/wikithat/internal/middleware"
)

// Router binds handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. mw may be nil for the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/resolve", h.Resolve)
		r.Get("/suggest", h.Suggest)

		r.Get("/topic-mapping", h.SearchMappings)
		r.Post("/topic-mapping", h.SaveMapping)

		r.Get("/compare", h.Compare)
		r.Post("/verdict", h.Verdict)

		r.Get("/trust-vote", h.TrustVotes)
		r.Post("/trust-vote", h.TrustVote)

		r.Get("/grokipedia/article", h.GrokipediaArticle)

		r.Get("/slugs/check", h.CheckSlug)
		r.Post("/slugs/check", h.CheckSlugs)

		r.Get("/sync/status", h.SyncStatus)
		r.Post("/sync/trigger", h.TriggerSync)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
