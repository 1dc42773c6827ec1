// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package music

import "strings"

// Track is one canonical listening-history record. Ingestion has
// already normalized alternate field spellings and substituted
// documented defaults for malformed numerics, so encoders can assume
// this single schema.
type Track struct {
	// Metadata
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Genre       string  `json:"genre"`
	SubGenre    string  `json:"sub_genre,omitempty"`
	Language    string  `json:"language,omitempty"`
	Mood        string  `json:"mood,omitempty"`
	Activity    string  `json:"activity,omitempty"`
	ReleaseYear int     `json:"release_year,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`

	// Engagement signals for this listen
	CompletionRate float64 `json:"completion_rate"` // 0-1
	Rating         float64 `json:"rating"`          // 0-5
	Liked          bool    `json:"liked"`
	Skipped        bool    `json:"skipped"`
	RepeatCount    int     `json:"repeat_count"`
	PlaylistAdd    bool    `json:"playlist_add"`

	// Listening context
	HourOfDay int    `json:"hour_of_day"` // 0-23
	Weekend   bool   `json:"weekend"`
	Weather   string `json:"weather,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Key returns the track's identity key. Identity is the normalized
// title::artist composite: trimmed, case-folded. Two rows with the same
// key are the same catalog entry.
func (t Track) Key() string {
	return Key(t.Title, t.Artist)
}

// Key derives the normalized title::artist identity key.
func Key(title, artist string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "::" + strings.ToLower(strings.TrimSpace(artist))
}

// Recommendation is one ranked result returned to the caller.
// It is ephemeral: recomputed per request, never persisted.
type Recommendation struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Genre  string  `json:"genre,omitempty"`
	Mood   string  `json:"mood,omitempty"`
	Score  float64 `json:"score"`
}
