// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package movie

import (
	"math"
	"testing"
	"time"
)

var statsEvalTime = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testRatings() []Rating {
	return []Rating{
		{UserID: "alice", MovieID: "m1", Rating: 5, Timestamp: statsEvalTime.Add(-30 * 24 * time.Hour)},
		{UserID: "bob", MovieID: "m1", Rating: 4, Timestamp: statsEvalTime.Add(-400 * 24 * time.Hour)},
		{UserID: "carol", MovieID: "m1", Rating: 1, Timestamp: statsEvalTime.Add(-10 * 24 * time.Hour)},
		{UserID: "alice", MovieID: "m2", Rating: 2},
		{UserID: "bob", MovieID: "m2", Rating: 3},
	}
}

func TestBuildStatsUserAggregates(t *testing.T) {
	st := BuildStats(testRatings(), statsEvalTime)

	alice := st.Users["alice"]
	if alice == nil {
		t.Fatal("alice missing from user stats")
	}
	if alice.Count != 2 {
		t.Errorf("alice count = %d, want 2", alice.Count)
	}
	if math.Abs(alice.Mean-3.5) > 1e-9 {
		t.Errorf("alice mean = %v, want 3.5", alice.Mean)
	}
	// Population variance of {5, 2}: ((1.5)^2 + (1.5)^2)/2 = 2.25.
	if math.Abs(alice.Variance-2.25) > 1e-9 {
		t.Errorf("alice variance = %v, want 2.25", alice.Variance)
	}
}

func TestBuildStatsMovieAggregates(t *testing.T) {
	st := BuildStats(testRatings(), statsEvalTime)

	m1 := st.Movies["m1"]
	if m1 == nil {
		t.Fatal("m1 missing from movie stats")
	}
	if m1.Count != 3 {
		t.Errorf("m1 count = %d, want 3", m1.Count)
	}
	if math.Abs(m1.Mean-10.0/3) > 1e-9 {
		t.Errorf("m1 mean = %v, want %v", m1.Mean, 10.0/3)
	}
	if m1.Hist != [5]int{1, 0, 0, 1, 1} {
		t.Errorf("m1 histogram = %v, want [1 0 0 1 1]", m1.Hist)
	}
}

func TestBuildStatsLikersDislikers(t *testing.T) {
	st := BuildStats(testRatings(), statsEvalTime)

	m1 := st.Movies["m1"]
	wantLikers := []string{"alice", "bob"}
	if len(m1.Likers) != len(wantLikers) {
		t.Fatalf("m1 likers = %v, want %v", m1.Likers, wantLikers)
	}
	for i := range wantLikers {
		if m1.Likers[i] != wantLikers[i] {
			t.Errorf("liker %d = %q, want %q (first-encountered order)", i, m1.Likers[i], wantLikers[i])
		}
	}
	if len(m1.Dislikers) != 1 || m1.Dislikers[0] != "carol" {
		t.Errorf("m1 dislikers = %v, want [carol]", m1.Dislikers)
	}
}

func TestBuildStatsLikersDeduplicated(t *testing.T) {
	ratings := []Rating{
		{UserID: "alice", MovieID: "m1", Rating: 5},
		{UserID: "alice", MovieID: "m1", Rating: 4},
	}
	st := BuildStats(ratings, statsEvalTime)
	if got := st.Movies["m1"].Likers; len(got) != 1 {
		t.Errorf("likers = %v, want single deduplicated entry", got)
	}
}

func TestBuildStatsRecentWindow(t *testing.T) {
	st := BuildStats(testRatings(), statsEvalTime)
	m1 := st.Movies["m1"]
	// Ratings 30 and 10 days back are recent; 400 days back is not.
	if m1.RecentCount != 2 {
		t.Errorf("m1 recent count = %d, want 2", m1.RecentCount)
	}
	if !m1.FirstAt.Equal(statsEvalTime.Add(-400 * 24 * time.Hour)) {
		t.Errorf("m1 FirstAt = %v", m1.FirstAt)
	}
	if !m1.LastAt.Equal(statsEvalTime.Add(-10 * 24 * time.Hour)) {
		t.Errorf("m1 LastAt = %v", m1.LastAt)
	}
}

func TestBuildStatsZeroTimestampIgnored(t *testing.T) {
	st := BuildStats(testRatings(), statsEvalTime)
	m2 := st.Movies["m2"]
	if !m2.FirstAt.IsZero() || !m2.LastAt.IsZero() || m2.RecentCount != 0 {
		t.Errorf("timestampless ratings produced activity window: %+v", m2)
	}
}

func TestBuildStatsNormalizesIDs(t *testing.T) {
	ratings := []Rating{
		{UserID: " Alice ", MovieID: " M1 ", Rating: 5},
		{UserID: "alice", MovieID: "m1", Rating: 3},
	}
	st := BuildStats(ratings, statsEvalTime)
	if st.Users["alice"] == nil || st.Users["alice"].Count != 2 {
		t.Errorf("id normalization failed: %+v", st.Users)
	}
	if st.Movies["m1"] == nil || st.Movies["m1"].Count != 2 {
		t.Errorf("movie id normalization failed: %+v", st.Movies)
	}
}

func TestStarBucket(t *testing.T) {
	tests := []struct {
		rating float64
		want   int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{2.4, 2},
		{2.5, 3},
		{4.6, 5},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		if got := starBucket(tt.rating); got != tt.want {
			t.Errorf("starBucket(%v) = %d, want %d", tt.rating, got, tt.want)
		}
	}
}
