// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package movie

import (
	"math"

	"github.com/tastevec/tastevec/internal/recommend"
)

// Dim is the embedding dimension of the movie pipeline.
const Dim = 64

// Coordinate layout of a movie embedding.
const (
	histOffset = 0 // 5-wide normalized star histogram

	meanCoord       = 5
	popularityCoord = 6
	sqrtPopCoord    = 7
	likeRatioCoord  = 8
	notDislikeCoord = 9

	// Collaborative band: hashed ids of up to 20 users who rated the
	// movie highly, a proxy for "who liked this".
	likersOffset, likersWidth = 10, 20

	genreOffset, genreWidth = 30, 12

	spanCoord   = 42
	recentCoord = 43

	// Hashed movie id, cold-start regularization: keeps embeddings for
	// similar ids loosely related.
	idOffset, idWidth = 44, 8
)

const (
	popularityCap   = 1000
	spanCapYears    = 20
	genreHashWeight = 1.0
	idHashWeight    = 0.5
)

// EncodeMovie builds the 64-dimension item embedding for one movie
// from its aggregate statistics and optional metadata. A movie with no
// statistics encodes to the zero vector: it retrieves with zero
// similarity against everything, effectively excluding it (the
// accepted cold-start policy). meta may be nil. The recency feature is
// precomputed in the statistics, anchored to their evaluation time.
func EncodeMovie(movieID string, st *MovieStats, meta *Movie) recommend.Embedding {
	vec := recommend.NewEmbedding(Dim)
	if st == nil || st.Count == 0 {
		return vec
	}

	count := float64(st.Count)
	for i, n := range st.Hist {
		vec[histOffset+i] = float64(n) / count
	}

	vec[meanCoord] = st.Mean / 5
	vec[popularityCoord] = math.Min(count, popularityCap) / popularityCap
	vec[sqrtPopCoord] = math.Min(math.Sqrt(count)/math.Sqrt(popularityCap), 1)
	vec[likeRatioCoord] = float64(len(st.Likers)) / count
	vec[notDislikeCoord] = 1 - float64(len(st.Dislikers))/count

	for i, userID := range st.Likers {
		if i >= likersWidth {
			break
		}
		vec[likersOffset+i] = recommend.HashUnit(userID)
	}

	if meta != nil {
		for _, genre := range meta.GenreList() {
			recommend.HashText(vec, genre, genreOffset, genreWidth, genreHashWeight)
		}
	}

	if !st.FirstAt.IsZero() && st.LastAt.After(st.FirstAt) {
		spanYears := st.LastAt.Sub(st.FirstAt).Hours() / (24 * 365)
		vec[spanCoord] = recommend.Clamp(spanYears/spanCapYears, 0, 1)
	}
	vec[recentCoord] = float64(st.RecentCount) / count

	recommend.HashText(vec, NormalizeID(movieID), idOffset, idWidth, idHashWeight)

	return vec
}
