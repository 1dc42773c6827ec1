// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package music

import (
	"math"

	"github.com/tastevec/tastevec/internal/recommend"
)

// Dim is the embedding dimension of the music pipeline. Every item and
// user vector in this pipeline has exactly this length.
const Dim = 128

// Coordinate layout of a track embedding. The vector is a fixed
// partition of named bands: hashed text bands for categorical
// attributes, then scalar coordinates for normalized numerics and
// context. Band weights reflect attribute importance for taste
// matching; genre carries the highest weight as the strongest signal.
const (
	titleOffset, titleWidth       = 0, 16
	artistOffset, artistWidth     = 16, 16
	genreOffset, genreWidth       = 32, 12
	subGenreOffset, subGenreWidth = 44, 8
	languageOffset, languageWidth = 52, 8
	moodOffset, moodWidth         = 60, 12
	activityOffset, activityWidth = 72, 8

	yearCoord        = 80
	durationCoord    = 81
	completionCoord  = 82
	ratingCoord      = 83
	likedCoord       = 84
	repeatCoord      = 85
	notSkippedCoord  = 86
	playlistAddCoord = 87
	hourSinCoord     = 88
	hourCosCoord     = 89
	weekendCoord     = 90

	weatherOffset, weatherWidth   = 91, 6
	locationOffset, locationWidth = 97, 6
)

// Text band weights.
const (
	titleWeight    = 1.5
	artistWeight   = 1.5
	genreWeight    = 2.0
	subGenreWeight = 1.5
	languageWeight = 1.0
	moodWeight     = 1.8
	activityWeight = 1.5
	contextWeight  = 1.0
)

// Numeric normalization constants.
const (
	yearBase        = 1950
	yearRange       = 100 // 1950-2050 mapped onto [0,1]
	durationCeil    = 600 // 10-minute ceiling in seconds
	ratingCeil      = 5
	repeatEncodeCap = 5
)

// EncodeTrack builds the 128-dimension item embedding for one track.
// The encoding is pure and side-effect-free: identical input always
// yields the identical vector.
func EncodeTrack(t Track) recommend.Embedding {
	vec := recommend.NewEmbedding(Dim)

	recommend.HashText(vec, t.Title, titleOffset, titleWidth, titleWeight)
	recommend.HashText(vec, t.Artist, artistOffset, artistWidth, artistWeight)
	recommend.HashText(vec, t.Genre, genreOffset, genreWidth, genreWeight)
	recommend.HashText(vec, t.SubGenre, subGenreOffset, subGenreWidth, subGenreWeight)
	recommend.HashText(vec, t.Language, languageOffset, languageWidth, languageWeight)
	recommend.HashText(vec, t.Mood, moodOffset, moodWidth, moodWeight)
	recommend.HashText(vec, t.Activity, activityOffset, activityWidth, activityWeight)

	if t.ReleaseYear > 0 {
		vec[yearCoord] = recommend.Clamp(float64(t.ReleaseYear-yearBase)/yearRange, 0, 1)
	}
	if t.DurationSec > 0 {
		vec[durationCoord] = math.Min(t.DurationSec/durationCeil, 1)
	}

	vec[completionCoord] = recommend.Clamp(t.CompletionRate, 0, 1)
	vec[ratingCoord] = recommend.Clamp(t.Rating/ratingCeil, 0, 1)
	vec[likedCoord] = boolCoord(t.Liked)
	vec[repeatCoord] = math.Min(float64(t.RepeatCount), repeatEncodeCap) / repeatEncodeCap
	// Inverted: "not skipped" scores higher.
	vec[notSkippedCoord] = 1 - boolCoord(t.Skipped)
	vec[playlistAddCoord] = boolCoord(t.PlaylistAdd)

	// Hour of day encoded cyclically so hour 23 and hour 0 are close.
	angle := 2 * math.Pi * float64(t.HourOfDay) / 24
	vec[hourSinCoord] = math.Sin(angle)
	vec[hourCosCoord] = math.Cos(angle)
	vec[weekendCoord] = boolCoord(t.Weekend)

	recommend.HashText(vec, t.Weather, weatherOffset, weatherWidth, contextWeight)
	recommend.HashText(vec, t.Location, locationOffset, locationWidth, contextWeight)

	return vec
}

func boolCoord(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
