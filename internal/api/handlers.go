// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastevec/tastevec/internal/config"
	"github.com/tastevec/tastevec/internal/ingest"
	"github.com/tastevec/tastevec/internal/metrics"
	"github.com/tastevec/tastevec/internal/recommend"
	"github.com/tastevec/tastevec/internal/recommend/movie"
	"github.com/tastevec/tastevec/internal/recommend/music"
)

// queryTimeout bounds recommendation query handling.
const queryTimeout = 10 * time.Second

// Trainer is notified when fresh data lands in the interaction store.
// Implementations must not block.
type Trainer interface {
	Retrain(pipeline string)
}

// Handler serves the recommendation API endpoints.
type Handler struct {
	musicEngine *music.Engine
	movieEngine *movie.Engine
	store       *ingest.Store
	trainer     Trainer
	cfg         config.RecommendConfig
	logger      zerolog.Logger
}

// NewHandler creates the API handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(musicEngine *music.Engine, movieEngine *movie.Engine, store *ingest.Store, trainer Trainer, cfg config.RecommendConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		musicEngine: musicEngine,
		movieEngine: movieEngine,
		store:       store,
		trainer:     trainer,
		cfg:         cfg,
		logger:      logger,
	}
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]string{"state": "alive"},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// HealthReady handles GET /api/v1/health/ready. The service is ready
// as soon as it can accept uploads; per-pipeline trained flags let
// probes distinguish "up" from "serving recommendations".
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]any{
			"state":         "ready",
			"music_trained": h.musicEngine.Trained(),
			"movie_trained": h.movieEngine.Trained(),
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Status handles GET /api/v1/status with model and store details.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	historyRows, ratingRows, movieRows := h.store.Counts()

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]any{
			"music": map[string]any{
				"trained":      h.musicEngine.Trained(),
				"version":      h.musicEngine.Version(),
				"trained_at":   h.musicEngine.LastTrainedAt(),
				"catalog_size": h.musicEngine.CatalogSize(),
				"history_rows": historyRows,
			},
			"movie": map[string]any{
				"trained":      h.movieEngine.Trained(),
				"version":      h.movieEngine.Version(),
				"trained_at":   h.movieEngine.LastTrainedAt(),
				"catalog_size": h.movieEngine.CatalogSize(),
				"rating_rows":  ratingRows,
				"movie_rows":   movieRows,
			},
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// UploadMusicHistory handles POST /api/v1/music/history. The body is a
// CSV listening-history export; it replaces the stored history
// wholesale and triggers a retrain.
func (h *Handler) UploadMusicHistory(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	defer func() { _ = body.Close() }()

	tracks, err := ingest.ParseTracks(body)
	if err != nil {
		metrics.RecordIngest("music_history", 0, err)
		respondError(w, http.StatusBadRequest, "INVALID_CSV", "Could not parse listening history CSV", err)
		return
	}
	if len(tracks) == 0 {
		respondError(w, http.StatusBadRequest, "EMPTY_UPLOAD", "No usable rows in upload", nil)
		return
	}

	h.store.ReplaceHistory(tracks)
	metrics.RecordIngest("music_history", len(tracks), nil)
	h.trainer.Retrain("music")

	h.logger.Info().Int("rows", len(tracks)).Msg("listening history replaced")
	respondJSON(w, http.StatusAccepted, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"rows_accepted": len(tracks)},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// MusicRecommendations handles GET /api/v1/music/recommendations.
// The stored listening history is the taste profile.
func (h *Handler) MusicRecommendations(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.cfg.DefaultMusicLimit)
	if limit < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be positive", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	recs, err := h.musicEngine.Recommend(ctx, h.store.History(), limit)
	metrics.RecordRecommend("music", time.Since(start), err)
	if err != nil {
		if errors.Is(err, recommend.ErrNotTrained) {
			respondError(w, http.StatusServiceUnavailable, "NOT_TRAINED", "Music model has not been trained yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}

	if recs == nil {
		recs = []music.Recommendation{}
	}
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"items": recs, "count": len(recs)},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// UploadMovieRatings handles POST /api/v1/movies/ratings. The body is
// a CSV rating export; it replaces the stored ratings wholesale and
// triggers a retrain.
func (h *Handler) UploadMovieRatings(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	defer func() { _ = body.Close() }()

	ratings, err := ingest.ParseRatings(body)
	if err != nil {
		metrics.RecordIngest("movie_ratings", 0, err)
		respondError(w, http.StatusBadRequest, "INVALID_CSV", "Could not parse ratings CSV", err)
		return
	}
	if len(ratings) == 0 {
		respondError(w, http.StatusBadRequest, "EMPTY_UPLOAD", "No usable rows in upload", nil)
		return
	}

	h.store.ReplaceRatings(ratings, nil)
	metrics.RecordIngest("movie_ratings", len(ratings), nil)
	h.trainer.Retrain("movie")

	h.logger.Info().Int("rows", len(ratings)).Msg("movie ratings replaced")
	respondJSON(w, http.StatusAccepted, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"rows_accepted": len(ratings)},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// UploadMovieCatalog handles POST /api/v1/movies/catalog. The body is
// a CSV of movie metadata (id, title, genres, year).
func (h *Handler) UploadMovieCatalog(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	defer func() { _ = body.Close() }()

	movies, err := ingest.ParseMovies(body)
	if err != nil {
		metrics.RecordIngest("movie_catalog", 0, err)
		respondError(w, http.StatusBadRequest, "INVALID_CSV", "Could not parse movie catalog CSV", err)
		return
	}
	if len(movies) == 0 {
		respondError(w, http.StatusBadRequest, "EMPTY_UPLOAD", "No usable rows in upload", nil)
		return
	}

	h.store.ReplaceMovies(movies)
	metrics.RecordIngest("movie_catalog", len(movies), nil)
	h.trainer.Retrain("movie")

	h.logger.Info().Int("rows", len(movies)).Msg("movie catalog replaced")
	respondJSON(w, http.StatusAccepted, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"rows_accepted": len(movies)},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// MovieRecommendations handles GET /api/v1/movies/recommendations.
// user_id selects the viewer; already-rated movies are excluded.
func (h *Handler) MovieRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id query parameter is required", nil)
		return
	}
	limit := getIntParam(r, "limit", h.cfg.DefaultMovieLimit)
	if limit < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be positive", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	recs, err := h.movieEngine.Recommend(ctx, userID, limit)
	metrics.RecordRecommend("movie", time.Since(start), err)
	if err != nil {
		if errors.Is(err, recommend.ErrNotTrained) {
			respondError(w, http.StatusServiceUnavailable, "NOT_TRAINED", "Movie model has not been trained yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}

	if recs == nil {
		recs = []movie.Recommendation{}
	}
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"items": recs, "count": len(recs), "user_id": userID},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// MovieStats handles GET /api/v1/movies/stats with data set summary
// statistics from the live snapshot.
func (h *Handler) MovieStats(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.movieEngine.Summary()
	if err != nil {
		if errors.Is(err, recommend.ErrNotTrained) {
			respondError(w, http.StatusServiceUnavailable, "NOT_TRAINED", "Movie model has not been trained yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STATS_ERROR", "Failed to compute statistics", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     summary,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}
