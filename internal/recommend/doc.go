// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package recommend provides the shared vector primitives for the
// two-tower retrieval pipelines.
//
// Both pipelines (music and movie) embed items and users independently
// into the same fixed-dimension space and match them by cosine
// similarity. There is no trained model: item and user encoders are
// deterministic feature-hashing and weighting schemes, so the same
// input always produces the same vector.
//
// # Vector Conventions
//
//   - Embedding dimension is fixed per pipeline (128 for music, 64 for
//     movies) and every vector in a pipeline has exactly that length.
//   - The all-zero vector is the defined representation for "no
//     information available" (cold start). It is never an error, and
//     cosine similarity against it is 0.
//   - Comparing vectors of different lengths is a programmer error and
//     panics rather than silently truncating.
//
// # Sub-packages
//
//   - music: implicit-engagement pipeline (128-dim)
//   - movie: explicit-rating pipeline with collaborative signals (64-dim)
//   - storage: versioned persistence of trained embedding tables
package recommend
