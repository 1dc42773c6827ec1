// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package ingest

import (
	"strconv"
	"strings"
)

// Documented defaults for malformed or absent numeric fields.
const (
	defaultCompletionRate = 0.5
	defaultRating         = 3.0
)

// musicAliases maps alternate canonicalized spellings of music-history
// headers to the canonical field name. Canonical names pass through.
var musicAliases = map[string]string{
	"song_title":        "title",
	"track":             "title",
	"track_name":        "title",
	"song":              "title",
	"artist_name":       "artist",
	"singer":            "artist",
	"song_genre":        "genre",
	"subgenre":          "sub_genre",
	"lang":              "language",
	"activity_type":     "activity",
	"year":              "release_year",
	"duration":          "duration_sec",
	"duration_seconds":  "duration_sec",
	"length_sec":        "duration_sec",
	"completion":        "completion_rate",
	"completionrate":    "completion_rate",
	"percent_played":    "completion_rate",
	"like":              "liked",
	"like_flag":         "liked",
	"skip":              "skipped",
	"skip_flag":         "skipped",
	"repeats":           "repeat_count",
	"replay_count":      "repeat_count",
	"added_to_playlist": "playlist_add",
	"playlist_added":    "playlist_add",
	"hour":              "hour_of_day",
	"time_of_day":       "hour_of_day",
	"is_weekend":        "weekend",
}

// movieAliases covers rating exports and movie metadata exports.
var movieAliases = map[string]string{
	"userid":       "user_id",
	"user":         "user_id",
	"movieid":      "movie_id",
	"item_id":      "movie_id",
	"id":           "movie_id",
	"score":        "rating",
	"stars":        "rating",
	"ts":           "timestamp",
	"time":         "timestamp",
	"genre":        "genres",
	"category":     "genres",
	"movie_title":  "title",
	"name":         "title",
	"release_year": "year",
}

// canonicalField folds a raw CSV header to its canonical field name:
// case-folded, runs of non-alphanumerics collapsed to a single
// underscore, then resolved through the given alias table.
func canonicalField(header string, aliases map[string]string) string {
	var b strings.Builder
	b.Grow(len(header))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	name := b.String()
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// row is one CSV record keyed by canonical field name.
type row map[string]string

func (r row) text(field string) string {
	return strings.TrimSpace(r[field])
}

// float parses a numeric field, substituting fallback for absent or
// malformed values. NaN is treated as malformed.
func (r row) float(field string, fallback float64) float64 {
	s := r.text(field)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v {
		return fallback
	}
	return v
}

func (r row) int(field string, fallback int) int {
	s := r.text(field)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Sources sometimes export integers as "3.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fallback
		}
		return int(f)
	}
	return v
}

// boolean accepts the flag spellings seen across exports.
func (r row) boolean(field string) bool {
	switch strings.ToLower(r.text(field)) {
	case "1", "true", "yes", "y", "t":
		return true
	default:
		return false
	}
}
