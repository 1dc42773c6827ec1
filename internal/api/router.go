// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package api provides the HTTP surface of the service using the Chi
// router: CSV ingestion, recommendation queries, health probes and
// the Prometheus scrape endpoint.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tastevec/tastevec/internal/config"
)

// healthRateLimit is permissive so monitoring probes are never
// rejected, while still bounding abuse.
const healthRateLimit = 1000

// Router wires handlers into the HTTP routing tree.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a router around the given handler.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup builds the full routing tree with the global middleware stack.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, router.cfg.Security.RateLimitWindow))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if !router.cfg.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(router.cfg.Security.RateLimitReqs, router.cfg.Security.RateLimitWindow))
		}
		r.Use(PrometheusMetrics)

		r.Get("/status", router.handler.Status)

		r.Route("/music", func(r chi.Router) {
			r.Post("/history", router.handler.UploadMusicHistory)
			r.Get("/recommendations", router.handler.MusicRecommendations)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Post("/ratings", router.handler.UploadMovieRatings)
			r.Post("/catalog", router.handler.UploadMovieCatalog)
			r.Get("/recommendations", router.handler.MovieRecommendations)
			r.Get("/stats", router.handler.MovieStats)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
