// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tastevec/tastevec/internal/recommend/movie"
	"github.com/tastevec/tastevec/internal/recommend/music"
)

// readRows parses a CSV stream into canonical rows. The first record
// is the header; each header is canonicalized through the alias table.
// Short records are tolerated (missing cells read as empty fields).
func readRows(r io.Reader, aliases map[string]string) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		// Strip a UTF-8 BOM some exports prepend to the first header.
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		fields[i] = canonicalField(h, aliases)
	}

	var rows []row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		rw := make(row, len(fields))
		for i, field := range fields {
			if field == "" || i >= len(record) {
				continue
			}
			rw[field] = record[i]
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

// ParseTracks reads a listening-history CSV into canonical tracks.
// Rows without both a title and an artist are dropped: they cannot
// form an identity key.
func ParseTracks(r io.Reader) ([]music.Track, error) {
	rows, err := readRows(r, musicAliases)
	if err != nil {
		return nil, err
	}

	tracks := make([]music.Track, 0, len(rows))
	for _, rw := range rows {
		title := rw.text("title")
		artist := rw.text("artist")
		if title == "" && artist == "" {
			continue
		}

		tracks = append(tracks, music.Track{
			Title:          title,
			Artist:         artist,
			Genre:          rw.text("genre"),
			SubGenre:       rw.text("sub_genre"),
			Language:       rw.text("language"),
			Mood:           rw.text("mood"),
			Activity:       rw.text("activity"),
			ReleaseYear:    rw.int("release_year", 0),
			DurationSec:    rw.float("duration_sec", 0),
			CompletionRate: rw.float("completion_rate", defaultCompletionRate),
			Rating:         rw.float("rating", defaultRating),
			Liked:          rw.boolean("liked"),
			Skipped:        rw.boolean("skipped"),
			RepeatCount:    rw.int("repeat_count", 0),
			PlaylistAdd:    rw.boolean("playlist_add"),
			HourOfDay:      rw.int("hour_of_day", 0),
			Weekend:        rw.boolean("weekend"),
			Weather:        rw.text("weather"),
			Location:       rw.text("location"),
		})
	}
	return tracks, nil
}

// ParseRatings reads a rating CSV into canonical rating records.
// Rows without a user id or movie id are dropped.
func ParseRatings(r io.Reader) ([]movie.Rating, error) {
	rows, err := readRows(r, movieAliases)
	if err != nil {
		return nil, err
	}

	ratings := make([]movie.Rating, 0, len(rows))
	for _, rw := range rows {
		userID := rw.text("user_id")
		movieID := rw.text("movie_id")
		if userID == "" || movieID == "" {
			continue
		}

		ratings = append(ratings, movie.Rating{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    rw.float("rating", defaultRating),
			Timestamp: parseTimestamp(rw.text("timestamp")),
		})
	}
	return ratings, nil
}

// ParseMovies reads a movie-metadata CSV.
func ParseMovies(r io.Reader) ([]movie.Movie, error) {
	rows, err := readRows(r, movieAliases)
	if err != nil {
		return nil, err
	}

	movies := make([]movie.Movie, 0, len(rows))
	for _, rw := range rows {
		id := rw.text("movie_id")
		if id == "" {
			continue
		}
		movies = append(movies, movie.Movie{
			ID:     id,
			Title:  rw.text("title"),
			Genres: rw.text("genres"),
			Year:   rw.int("year", 0),
		})
	}
	return movies, nil
}

// parseTimestamp accepts unix seconds or RFC 3339; anything else
// yields the zero time, which the statistics builder treats as
// "no activity information".
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
