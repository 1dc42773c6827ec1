// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package config loads and validates the service configuration from
// layered sources: built-in defaults, an optional YAML file, then
// environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	// ModelPath is the directory for persisted model snapshots.
	ModelPath string `koanf:"model_path"`

	// TrainInterval is how often the trainer retrains from the
	// current interaction store. Zero disables periodic retraining;
	// uploads still trigger a retrain.
	TrainInterval time.Duration `koanf:"train_interval"`

	// TrainOnStartup retrains immediately after restoring persisted
	// models, instead of waiting for the first interval.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// KeepVersions is how many persisted model versions to retain
	// per pipeline.
	KeepVersions int `koanf:"keep_versions"`

	// DefaultMusicLimit and DefaultMovieLimit cap result list sizes
	// when a request does not specify one.
	DefaultMusicLimit int `koanf:"default_music_limit"`
	DefaultMovieLimit int `koanf:"default_movie_limit"`

	// MaxUploadBytes bounds the accepted CSV upload size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// SecurityConfig holds request-level protections.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Validate checks the configuration for values the service cannot run
// with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Recommend.ModelPath == "" {
		return fmt.Errorf("recommend.model_path must not be empty")
	}
	if c.Recommend.TrainInterval < 0 {
		return fmt.Errorf("recommend.train_interval must not be negative, got %s", c.Recommend.TrainInterval)
	}
	if c.Recommend.KeepVersions < 1 {
		return fmt.Errorf("recommend.keep_versions must be at least 1, got %d", c.Recommend.KeepVersions)
	}
	if c.Recommend.DefaultMusicLimit < 1 || c.Recommend.DefaultMovieLimit < 1 {
		return fmt.Errorf("recommend default limits must be at least 1")
	}
	if c.Recommend.MaxUploadBytes < 1 {
		return fmt.Errorf("recommend.max_upload_bytes must be positive, got %d", c.Recommend.MaxUploadBytes)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	return nil
}
