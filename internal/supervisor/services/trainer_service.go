// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastevec/tastevec/internal/ingest"
	"github.com/tastevec/tastevec/internal/metrics"
	"github.com/tastevec/tastevec/internal/recommend/movie"
	"github.com/tastevec/tastevec/internal/recommend/music"
	"github.com/tastevec/tastevec/internal/recommend/storage"
)

// trainTimeout bounds a single training cycle.
const trainTimeout = 5 * time.Minute

// TrainerConfig holds training loop configuration.
type TrainerConfig struct {
	// TrainOnStartup triggers a training pass when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain from the interaction
	// store. Zero or negative disables the periodic pass; uploads
	// still trigger retraining.
	TrainInterval time.Duration

	// KeepVersions is how many persisted model versions to retain.
	KeepVersions int
}

// TrainerService retrains both pipelines from the interaction store,
// persists each new model version and prunes old ones. It runs under
// the model-layer supervisor and receives retrain requests from the
// upload handlers.
type TrainerService struct {
	musicEngine *music.Engine
	movieEngine *movie.Engine
	store       *ingest.Store
	models      *storage.Store
	config      TrainerConfig
	logger      zerolog.Logger
	requests    chan string
	name        string
}

// NewTrainerService creates the training service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainerService(musicEngine *music.Engine, movieEngine *movie.Engine, store *ingest.Store, models *storage.Store, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	if cfg.KeepVersions < 1 {
		cfg.KeepVersions = 1
	}
	return &TrainerService{
		musicEngine: musicEngine,
		movieEngine: movieEngine,
		store:       store,
		models:      models,
		config:      cfg,
		logger:      logger.With().Str("service", "trainer").Logger(),
		requests:    make(chan string, 8),
		name:        "trainer-service",
	}
}

// Retrain requests a retrain of one pipeline ("music" or "movie").
// It never blocks: when the queue is full a pass is already pending
// and will pick up the latest store contents anyway.
func (s *TrainerService) Retrain(pipeline string) {
	select {
	case s.requests <- pipeline:
	default:
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("trainer service starting")

	if s.config.TrainOnStartup {
		s.trainMusic(ctx)
		s.trainMovies(ctx)
	}

	var tick <-chan time.Time
	if s.config.TrainInterval > 0 {
		ticker := time.NewTicker(s.config.TrainInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trainer service shutting down")
			return ctx.Err()

		case pipeline := <-s.requests:
			switch pipeline {
			case "music":
				s.trainMusic(ctx)
			case "movie":
				s.trainMovies(ctx)
			default:
				s.logger.Warn().Str("pipeline", pipeline).Msg("unknown retrain request")
			}

		case <-tick:
			s.trainMusic(ctx)
			s.trainMovies(ctx)
		}
	}
}

func (s *TrainerService) trainMusic(ctx context.Context) {
	history := s.store.History()
	if len(history) == 0 {
		s.logger.Debug().Msg("no listening history, skipping music training")
		return
	}

	trainCtx, cancel := context.WithTimeout(ctx, trainTimeout)
	defer cancel()

	start := time.Now()
	err := s.musicEngine.Train(trainCtx, history)
	metrics.RecordTrain("music", time.Since(start), s.musicEngine.CatalogSize(), s.musicEngine.Version(), err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("music training failed")
		return
	}

	s.persistMusic()
}

func (s *TrainerService) trainMovies(ctx context.Context) {
	ratings, movies := s.store.Ratings()
	if len(ratings) == 0 {
		s.logger.Debug().Msg("no ratings, skipping movie training")
		return
	}

	trainCtx, cancel := context.WithTimeout(ctx, trainTimeout)
	defer cancel()

	start := time.Now()
	err := s.movieEngine.Train(trainCtx, ratings, movies, time.Now())
	metrics.RecordTrain("movie", time.Since(start), s.movieEngine.CatalogSize(), s.movieEngine.Version(), err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("movie training failed")
		return
	}

	s.persistMovies()
}

func (s *TrainerService) persistMusic() {
	model, ok := s.musicEngine.Export()
	if !ok {
		return
	}
	meta, err := s.models.Save("music", model.Version, model, model.TrainedAt, len(model.Order))
	if err != nil {
		s.logger.Warn().Err(err).Msg("music model persistence failed")
		return
	}
	if err := s.models.Prune("music", s.config.KeepVersions); err != nil {
		s.logger.Warn().Err(err).Msg("music model pruning failed")
	}
	s.logger.Info().
		Int("version", meta.Version).
		Int("items", meta.ItemCount).
		Int64("bytes", meta.SizeBytes).
		Msg("music model persisted")
}

func (s *TrainerService) persistMovies() {
	model, ok := s.movieEngine.Export()
	if !ok {
		return
	}
	meta, err := s.models.Save("movie", model.Version, model, model.TrainedAt, len(model.Order))
	if err != nil {
		s.logger.Warn().Err(err).Msg("movie model persistence failed")
		return
	}
	if err := s.models.Prune("movie", s.config.KeepVersions); err != nil {
		s.logger.Warn().Err(err).Msg("movie model pruning failed")
	}
	s.logger.Info().
		Int("version", meta.Version).
		Int("items", meta.ItemCount).
		Int64("bytes", meta.SizeBytes).
		Msg("movie model persisted")
}

// String returns the service name for supervisor logs.
func (s *TrainerService) String() string {
	return s.name
}
