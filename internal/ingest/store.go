// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package ingest

import (
	"sync"

	"github.com/tastevec/tastevec/internal/recommend/movie"
	"github.com/tastevec/tastevec/internal/recommend/music"
)

// Store holds the uploaded interaction data between ingestion events.
// Each upload replaces its data set wholesale; the engines rebuild
// their tables from a full copy, never from a partially-updated view.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	history []music.Track
	ratings []movie.Rating
	movies  []movie.Movie
}

// NewStore creates an empty interaction store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceHistory swaps in a new listening history.
func (s *Store) ReplaceHistory(tracks []music.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = tracks
}

// ReplaceRatings swaps in a new rating set. movies may be nil to keep
// the current metadata.
func (s *Store) ReplaceRatings(ratings []movie.Rating, movies []movie.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = ratings
	if movies != nil {
		s.movies = movies
	}
}

// ReplaceMovies swaps in new movie metadata.
func (s *Store) ReplaceMovies(movies []movie.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = movies
}

// History returns a copy of the current listening history.
func (s *Store) History() []music.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]music.Track, len(s.history))
	copy(out, s.history)
	return out
}

// Ratings returns copies of the current rating set and metadata.
func (s *Store) Ratings() ([]movie.Rating, []movie.Movie) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ratings := make([]movie.Rating, len(s.ratings))
	copy(ratings, s.ratings)
	movies := make([]movie.Movie, len(s.movies))
	copy(movies, s.movies)
	return ratings, movies
}

// Counts reports the current data set sizes.
func (s *Store) Counts() (historyRows, ratingRows, movieRows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history), len(s.ratings), len(s.movies)
}
