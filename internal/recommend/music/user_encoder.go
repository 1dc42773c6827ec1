// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package music

import (
	"math"

	"github.com/tastevec/tastevec/internal/recommend"
)

// EncodeListener aggregates the item embeddings of a user's listening
// history into a single unit-length vector in the item space.
//
// Each record contributes its item embedding scaled by an engagement
// weight. Records whose track is absent from the table are skipped.
// If no record carries usable weight, the zero vector is returned;
// otherwise the accumulated vector is L2-normalized, so the result is
// always unit length for non-empty usable history.
func EncodeListener(history []Track, table map[string]recommend.Embedding) recommend.Embedding {
	acc := recommend.NewEmbedding(Dim)
	var totalWeight float64

	for _, t := range history {
		emb, ok := table[t.Key()]
		if !ok {
			continue
		}

		w := listenWeight(t)
		for i, v := range emb {
			acc[i] += w * v
		}
		totalWeight += w
	}

	if totalWeight == 0 {
		return acc
	}

	recommend.Normalize(acc)
	return acc
}

// listenWeight computes the scalar aggregation weight of one record.
// Completion, rating, likes and repeats all raise the weight; a skip
// is a 0.3 multiplier penalty, not an exclusion. Rating enters on its
// normalized [0,1] scale.
func listenWeight(t Track) float64 {
	w := (0.5+t.CompletionRate)*(0.6+t.Rating/ratingCeil*0.8) + boolCoord(t.Liked)*0.5 + math.Min(float64(t.RepeatCount), 3)*0.3
	if t.Skipped {
		w *= 0.3
	}
	return w
}
