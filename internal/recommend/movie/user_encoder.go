// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package movie

import (
	"math"
	"sort"

	"github.com/tastevec/tastevec/internal/recommend"
)

// User vector layout. Coordinates 5..Dim-1 carry the aggregate of
// liked movie embeddings; the genre means overwrite the tail band and
// the anti-pattern adjustment targets a fixed 8-wide band at the head
// of the aggregate region.
const (
	userMeanCoord     = 0
	userVarCoord      = 1
	userActivityCoord = 2
	userLikeCoord     = 3
	userDislikeCoord  = 4

	aggregateOffset = 5

	antiOffset, antiWidth = 5, 8

	genreMeansOffset, genreMeansWidth = 56, 8
)

const (
	maxLikedItems    = 30
	maxDislikedItems = 10
	antiWeight       = 0.3
	activityCap      = 100
)

// EncodeViewer builds the 64-dimension user embedding from the user's
// profile, their rating history (in record order) and the trained
// movie-embedding table. A user with no ratings encodes to the zero
// vector; otherwise the result is L2-normalized.
func EncodeViewer(us *UserStats, ratings []Rating, table map[string]recommend.Embedding, movies map[string]*Movie) recommend.Embedding {
	vec := recommend.NewEmbedding(Dim)
	if us == nil || us.Count == 0 {
		return vec
	}

	count := float64(us.Count)
	var liked, disliked int
	for _, r := range ratings {
		if r.Rating >= likeThreshold {
			liked++
		}
		if r.Rating <= dislikeThreshold {
			disliked++
		}
	}

	vec[userMeanCoord] = us.Mean / 5
	// Square-root compression; population std of 1-5 ratings tops out at 2.
	vec[userVarCoord] = math.Min(math.Sqrt(us.Variance)/2, 1)
	vec[userActivityCoord] = math.Min(count, activityCap) / activityCap
	vec[userLikeCoord] = float64(liked) / count
	vec[userDislikeCoord] = float64(disliked) / count

	aggregateLiked(vec, ratings, table)
	subtractDisliked(vec, ratings, table)
	genreMeans(vec, ratings, movies)

	recommend.Normalize(vec)
	return vec
}

// aggregateLiked averages the embeddings of the user's top 30 highly
// rated movies over the aggregate region, weighted by (rating-3)/2 so
// a 4-star rating contributes 0.5 and a 5-star 1.0.
func aggregateLiked(vec recommend.Embedding, ratings []Rating, table map[string]recommend.Embedding) {
	likedRatings := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.Rating >= likeThreshold {
			likedRatings = append(likedRatings, r)
		}
	}
	// Highest ratings first; ties keep record order.
	sort.SliceStable(likedRatings, func(i, j int) bool {
		return likedRatings[i].Rating > likedRatings[j].Rating
	})
	if len(likedRatings) > maxLikedItems {
		likedRatings = likedRatings[:maxLikedItems]
	}

	acc := recommend.NewEmbedding(Dim)
	var totalWeight float64
	for _, r := range likedRatings {
		emb, ok := table[NormalizeID(r.MovieID)]
		if !ok {
			continue
		}
		w := (r.Rating - 3) / 2
		for j := aggregateOffset; j < Dim; j++ {
			acc[j] += w * emb[j]
		}
		totalWeight += w
	}

	if totalWeight > 0 {
		for j := aggregateOffset; j < Dim; j++ {
			vec[j] = acc[j] / totalWeight
		}
	}
}

// subtractDisliked pushes the vector away from patterns the user
// rated poorly, over a fixed narrow band, for up to 10 disliked movies.
func subtractDisliked(vec recommend.Embedding, ratings []Rating, table map[string]recommend.Embedding) {
	seen := 0
	for _, r := range ratings {
		if r.Rating > dislikeThreshold {
			continue
		}
		if seen >= maxDislikedItems {
			break
		}
		seen++

		emb, ok := table[NormalizeID(r.MovieID)]
		if !ok {
			continue
		}
		for j := antiOffset; j < antiOffset+antiWidth; j++ {
			vec[j] -= antiWeight * emb[j]
		}
	}
}

// genreMeans writes the user's mean rating per genre into the tail
// band, in first-encountered genre order, at most 8 genres.
func genreMeans(vec recommend.Embedding, ratings []Rating, movies map[string]*Movie) {
	order := make([]string, 0, genreMeansWidth)
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range ratings {
		meta := movies[NormalizeID(r.MovieID)]
		if meta == nil {
			continue
		}
		for _, genre := range meta.GenreList() {
			if _, ok := counts[genre]; !ok {
				order = append(order, genre)
			}
			sums[genre] += r.Rating
			counts[genre]++
		}
	}

	for i, genre := range order {
		if i >= genreMeansWidth {
			break
		}
		mean := sums[genre] / float64(counts[genre])
		vec[genreMeansOffset+i] = mean / 5
	}
}
