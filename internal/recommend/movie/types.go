// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package movie

import (
	"strings"
	"time"
)

// Rating is one historical rating event. Immutable once recorded.
type Rating struct {
	UserID    string    `json:"user_id"`
	MovieID   string    `json:"movie_id"`
	Rating    float64   `json:"rating"` // 1-5 stars
	Timestamp time.Time `json:"timestamp"`
}

// Movie is optional catalog metadata for a rated movie. Genres is the
// source's delimiter-joined genre list (e.g. "Action|Sci-Fi").
type Movie struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Genres string `json:"genres,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// GenreList splits the delimiter-joined genre list into trimmed names.
func (m Movie) GenreList() []string {
	return SplitGenres(m.Genres)
}

// SplitGenres splits a pipe-delimited genre list, dropping empties.
func SplitGenres(genres string) []string {
	if genres == "" {
		return nil
	}
	parts := strings.Split(genres, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeID trims and case-folds an identifier before it is used as
// a lookup key anywhere in the pipeline.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Recommendation is one ranked result. Predicted is a display-only
// heuristic; ranking always orders by similarity.
type Recommendation struct {
	MovieID   string  `json:"movie_id"`
	Title     string  `json:"title,omitempty"`
	Genres    string  `json:"genres,omitempty"`
	Score     float64 `json:"score"`
	Predicted float64 `json:"predicted_rating"`
}

// Summary aggregates the trained rating set for display and
// monitoring. It is not used for further computation.
type Summary struct {
	Users      int     `json:"users"`
	Movies     int     `json:"movies"`
	Ratings    int     `json:"ratings"`
	MeanRating float64 `json:"mean_rating"`
}
