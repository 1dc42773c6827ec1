// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package recommend

import (
	"hash/fnv"
	"math"
)

// HashText distributes the character codes of text across a band of
// width coordinates starting at offset, wrapping modulo the band width.
// Each character adds (code/255)*weight to its target coordinate.
//
// This is the only mechanism for turning free text (titles, genres,
// moods, weather) into numeric signal. It is deterministic and
// order-sensitive but makes no attempt at semantic similarity: two
// unrelated strings can collide. An empty string contributes nothing.
func HashText(vec Embedding, text string, offset, width int, weight float64) {
	if text == "" || width <= 0 {
		return
	}
	i := 0
	for _, r := range text {
		vec[offset+i%width] += float64(r) / 255.0 * weight
		i++
	}
}

// HashUnit folds a stable 32-bit FNV-1a hash of s into [0, 1].
// The same string always yields the same value within and across runs.
func HashUnit(s string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum32()) / float64(math.MaxUint32)
}
