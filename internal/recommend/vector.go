// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package recommend

import (
	"fmt"
	"math"
)

// Embedding is a fixed-length vector in the shared user/item space.
// Embeddings are derived data: they are produced by encoders, never
// hand-edited, and must be recomputed whenever their inputs change.
type Embedding []float64

// NewEmbedding returns a zero vector of the given dimension.
func NewEmbedding(dim int) Embedding {
	return make(Embedding, dim)
}

// IsZero reports whether every coordinate is exactly zero.
// A zero vector represents "no information available", not an error.
func (e Embedding) IsZero() bool {
	for _, v := range e {
		if v != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean (L2) norm of the vector.
func (e Embedding) Norm() float64 {
	var sum float64
	for _, v := range e {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Clone returns an independent copy of the vector.
func (e Embedding) Clone() Embedding {
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Normalize scales the vector in place to unit length. A zero norm is
// substituted with 1, so the zero vector stays the zero vector.
func Normalize(e Embedding) {
	norm := e.Norm()
	if norm == 0 {
		norm = 1
	}
	for i := range e {
		e[i] /= norm
	}
}

// Cosine returns the cosine similarity of two vectors in [-1, 1].
// Zero norms are substituted with 1 in the denominator, so comparing
// against a zero vector yields 0 rather than a division error.
//
// The vectors must have the same length; a mismatch is a precondition
// violation and panics.
func Cosine(a, b Embedding) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("recommend: cosine dimension mismatch: %d vs %d", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	na := math.Sqrt(normA)
	nb := math.Sqrt(normB)
	if na == 0 {
		na = 1
	}
	if nb == 0 {
		nb = 1
	}

	return dot / (na * nb)
}

// Clamp bounds v to the [lo, hi] interval.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
