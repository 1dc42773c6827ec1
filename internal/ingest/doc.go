// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package ingest turns uploaded CSV rows into canonical records.
//
// Source exports spell the same field several ways ("title" vs
// "Song_Title", "user_id" vs "userId"). Instead of duck-typing inside
// the encoders, ingestion canonicalizes each header (case-folded,
// non-alphanumerics collapsed to underscores) and resolves it through
// an alias table, so the core pipelines see exactly one schema.
//
// Malformed or absent numeric fields never fail a row: the documented
// default is substituted silently (completion rate 0.5, rating 3,
// counters 0). Only a structurally unreadable CSV is an error.
package ingest
