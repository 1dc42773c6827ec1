// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package storage persists trained embedding tables between restarts.
//
// Each pipeline's exported model is serialized with gob, gzip
// compressed and written as a versioned file with metadata and a
// SHA-256 checksum, so a corrupted or truncated file is detected on
// load rather than silently producing broken embeddings. Files are
// named {pipeline}_v{version}.gob.gz.
//
// Writes go to a temporary file and are renamed into place, so a crash
// mid-save never clobbers the previous good version.
package storage
