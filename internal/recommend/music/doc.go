// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package music implements the implicit-engagement retrieval pipeline.
//
// The catalog is derived from a user's listening history: each row
// carries song metadata plus the engagement signals for that listen
// (completion, rating, like/skip flags, repeats) and its context
// (hour, weekend, weather, location). Songs are deduplicated by a
// normalized title::artist key, keeping the first-seen row.
//
// The item tower encodes each track into a 128-dimension embedding via
// fixed feature-hash bands and normalized scalars. The user tower
// aggregates the embeddings of listened tracks, weighted by engagement,
// into a unit-length vector in the same space. Ranking is cosine
// similarity over the full catalog with no exclusions.
package music
