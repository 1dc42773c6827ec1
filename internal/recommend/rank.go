// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package recommend

import "sort"

// Scored pairs an item identity key with its similarity score.
type Scored struct {
	Key   string
	Score float64
}

// TopK sorts scored items descending by score and truncates to k.
// The sort is stable: ties keep the order the items were scored in,
// which both pipelines define as first-seen catalog order. k <= 0
// returns an empty slice.
func TopK(scored []Scored, k int) []Scored {
	if k <= 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
