// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Command server runs the recommendation service: CSV ingestion, the
// music and movie two-tower pipelines, and the HTTP API, all under a
// suture supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tastevec/tastevec/internal/api"
	"github.com/tastevec/tastevec/internal/config"
	"github.com/tastevec/tastevec/internal/ingest"
	"github.com/tastevec/tastevec/internal/logging"
	"github.com/tastevec/tastevec/internal/recommend/movie"
	"github.com/tastevec/tastevec/internal/recommend/music"
	"github.com/tastevec/tastevec/internal/recommend/storage"
	"github.com/tastevec/tastevec/internal/supervisor"
	"github.com/tastevec/tastevec/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("configuration error")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("tastevec starting")

	musicEngine := music.NewEngine(logger)
	movieEngine := movie.NewEngine(logger)

	models, err := storage.NewStore(cfg.Recommend.ModelPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("model store initialization failed")
	}
	restoreModels(models, musicEngine, movieEngine)

	store := ingest.NewStore()

	trainer := services.NewTrainerService(musicEngine, movieEngine, store, models, services.TrainerConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
		KeepVersions:   cfg.Recommend.KeepVersions,
	}, logger)

	handler := api.NewHandler(musicEngine, movieEngine, store, trainer, cfg.Recommend, logger)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddModelService(trainer)
	tree.AddAPIService(services.NewHTTPServerService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervision tree exited")
		os.Exit(1)
	}
	logger.Info().Msg("tastevec stopped")
}

// restoreModels loads the latest persisted model per pipeline, if any,
// so the service answers queries immediately after a restart.
func restoreModels(models *storage.Store, musicEngine *music.Engine, movieEngine *movie.Engine) {
	if _, ok := models.LatestVersion("music"); ok {
		var m music.Model
		meta, err := models.Load("music", 0, &m)
		if err != nil {
			logging.Warn().Err(err).Msg("music model restore failed")
		} else {
			musicEngine.Restore(&m)
			logging.Info().Int("version", meta.Version).Int("items", meta.ItemCount).Msg("music model restored")
		}
	}

	if _, ok := models.LatestVersion("movie"); ok {
		var m movie.Model
		meta, err := models.Load("movie", 0, &m)
		if err != nil {
			logging.Warn().Err(err).Msg("movie model restore failed")
		} else {
			movieEngine.Restore(&m)
			logging.Info().Int("version", meta.Version).Int("items", meta.ItemCount).Msg("movie model restored")
		}
	}
}
