// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package recommend

import "errors"

// Sentinel errors for truly invalid use. "No signal" conditions
// (unknown items, empty history, cold-start users) are represented
// in-band as zero vectors or empty result lists, never as errors.
var (
	// ErrNotTrained indicates the embedding tables have never been
	// built. Callers must train before requesting recommendations.
	ErrNotTrained = errors.New("recommend: model not trained")

	// ErrEmptyCatalog indicates a train call with no usable records.
	ErrEmptyCatalog = errors.New("recommend: no catalog records")
)
