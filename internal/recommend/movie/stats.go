// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package movie

import (
	"math"
	"time"
)

// Rating thresholds for the liker/disliker sets.
const (
	likeThreshold    = 4.0
	dislikeThreshold = 2.0
)

// recentWindow is the trailing activity window anchored to evaluation
// time, used for the recency feature.
const recentWindow = 365 * 24 * time.Hour

// UserStats is the per-user aggregate over all of a user's ratings.
// Rebuilt in full whenever the rating set changes, never patched.
type UserStats struct {
	Ratings  []float64
	Count    int
	Mean     float64
	Variance float64 // population variance
}

// MovieStats is the per-movie aggregate over all ratings referencing it.
type MovieStats struct {
	// Hist buckets ratings by integer star 1-5 (index 0 = 1 star).
	Hist  [5]int
	Count int
	Mean  float64

	// Likers holds users who rated >= 4, Dislikers users who rated
	// <= 2, deduplicated, in first-encountered rating order.
	Likers    []string
	Dislikers []string

	// Activity window, for the temporal features.
	FirstAt     time.Time
	LastAt      time.Time
	RecentCount int // ratings within recentWindow of evaluation time
}

// Stats is the full set of aggregates from one pass over the ratings.
// A user or movie absent from the maps is unknown to the model.
type Stats struct {
	Users  map[string]*UserStats
	Movies map[string]*MovieStats

	// EvalTime anchors the trailing recency window.
	EvalTime time.Time
}

// BuildStats computes all per-user and per-movie aggregates in one
// full pass over the rating set. evalTime anchors the trailing
// recency window; a zero value means time.Now().
func BuildStats(ratings []Rating, evalTime time.Time) *Stats {
	if evalTime.IsZero() {
		evalTime = time.Now()
	}
	recentCutoff := evalTime.Add(-recentWindow)

	st := &Stats{
		Users:    make(map[string]*UserStats),
		Movies:   make(map[string]*MovieStats),
		EvalTime: evalTime,
	}

	likerSeen := make(map[string]map[string]struct{})
	dislikerSeen := make(map[string]map[string]struct{})

	for _, r := range ratings {
		userID := NormalizeID(r.UserID)
		movieID := NormalizeID(r.MovieID)

		us := st.Users[userID]
		if us == nil {
			us = &UserStats{}
			st.Users[userID] = us
		}
		us.Ratings = append(us.Ratings, r.Rating)
		us.Count++

		ms := st.Movies[movieID]
		if ms == nil {
			ms = &MovieStats{}
			st.Movies[movieID] = ms
		}

		bucket := starBucket(r.Rating)
		ms.Hist[bucket-1]++
		ms.Count++
		ms.Mean += r.Rating // sum for now, divided below

		if r.Rating >= likeThreshold {
			seen := likerSeen[movieID]
			if seen == nil {
				seen = make(map[string]struct{})
				likerSeen[movieID] = seen
			}
			if _, dup := seen[userID]; !dup {
				seen[userID] = struct{}{}
				ms.Likers = append(ms.Likers, userID)
			}
		}
		if r.Rating <= dislikeThreshold {
			seen := dislikerSeen[movieID]
			if seen == nil {
				seen = make(map[string]struct{})
				dislikerSeen[movieID] = seen
			}
			if _, dup := seen[userID]; !dup {
				seen[userID] = struct{}{}
				ms.Dislikers = append(ms.Dislikers, userID)
			}
		}

		if !r.Timestamp.IsZero() {
			if ms.FirstAt.IsZero() || r.Timestamp.Before(ms.FirstAt) {
				ms.FirstAt = r.Timestamp
			}
			if r.Timestamp.After(ms.LastAt) {
				ms.LastAt = r.Timestamp
			}
			if r.Timestamp.After(recentCutoff) && !r.Timestamp.After(evalTime) {
				ms.RecentCount++
			}
		}
	}

	for _, ms := range st.Movies {
		if ms.Count > 0 {
			ms.Mean /= float64(ms.Count)
		}
	}

	for _, us := range st.Users {
		var sum float64
		for _, r := range us.Ratings {
			sum += r
		}
		us.Mean = sum / float64(us.Count)

		var sq float64
		for _, r := range us.Ratings {
			d := r - us.Mean
			sq += d * d
		}
		us.Variance = sq / float64(us.Count)
	}

	return st
}

// starBucket maps a rating onto an integer star bucket 1-5.
func starBucket(rating float64) int {
	b := int(math.Round(rating))
	if b < 1 {
		b = 1
	}
	if b > 5 {
		b = 5
	}
	return b
}
