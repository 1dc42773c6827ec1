// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package movie implements the explicit-rating retrieval pipeline.
//
// A full pass over the rating set produces per-user and per-movie
// aggregate statistics (histograms, means, liker/disliker sets). The
// item tower encodes each rated movie into a 64-dimension embedding
// built from those statistics plus hashed metadata; the hashed ids of
// users who rated a movie highly act as a collaborative signal,
// substituting for a trained collaborative embedding. The user tower
// aggregates the embeddings of a user's highly-rated movies, pushes
// away from disliked patterns, and records per-genre taste.
//
// Statistics and embeddings are rebuilt wholesale whenever the rating
// set changes; there is no incremental update path. Unrated movies
// embed to the zero vector and therefore retrieve with zero similarity,
// an accepted cold-start limitation.
package movie
