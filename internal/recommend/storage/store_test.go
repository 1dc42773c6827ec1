// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testModel struct {
	Order []string
	Table map[string][]float64
}

func sampleModel() testModel {
	return testModel{
		Order: []string{"a", "b"},
		Table: map[string][]float64{
			"a": {1, 0, 0.5},
			"b": {0, 1, 0.25},
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	trainedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	meta, err := s.Save("music", 1, sampleModel(), trainedAt, 2)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if meta.Pipeline != "music" || meta.Version != 1 || meta.ItemCount != 2 {
		t.Errorf("metadata = %+v", meta)
	}
	if !meta.TrainedAt.Equal(trainedAt) {
		t.Errorf("TrainedAt = %v, want %v", meta.TrainedAt, trainedAt)
	}
	if meta.Checksum == "" || meta.SizeBytes == 0 {
		t.Errorf("incomplete metadata: %+v", meta)
	}

	var got testModel
	loaded, err := s.Load("music", 1, &got)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Checksum != meta.Checksum {
		t.Errorf("checksum changed across round trip: %s vs %s", loaded.Checksum, meta.Checksum)
	}
	if len(got.Order) != 2 || got.Order[0] != "a" || got.Order[1] != "b" {
		t.Errorf("order = %v", got.Order)
	}
	if got.Table["a"][2] != 0.5 {
		t.Errorf("table = %v", got.Table)
	}
}

func TestStoreLoadVersionZeroIsLatest(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for v := 1; v <= 3; v++ {
		m := sampleModel()
		m.Order = append(m.Order, "extra")[:v] // distinguishable per version
		if _, err := s.Save("movie", v, m, time.Now(), v); err != nil {
			t.Fatalf("Save v%d: %v", v, err)
		}
	}

	var got testModel
	meta, err := s.Load("movie", 0, &got)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Version != 3 {
		t.Errorf("version 0 resolved to %d, want 3", meta.Version)
	}
}

func TestStoreLoadMissingPipeline(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var got testModel
	if _, err := s.Load("music", 0, &got); err == nil {
		t.Error("expected error loading from empty store")
	}
}

func TestStoreChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.Save("music", 1, sampleModel(), time.Now(), 2); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Re-save the same payload under a metadata lie by writing a file
	// whose stored checksum cannot match: corrupt one byte in place.
	path := filepath.Join(dir, "music_v1.gob.gz")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Flip a byte near the end, inside the compressed payload.
	data[len(data)-10] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var got testModel
	if _, err := s.Load("music", 1, &got); err == nil {
		t.Error("expected error loading corrupted file")
	}
}

func TestStoreScanOnOpen(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := first.Save("music", 2, sampleModel(), time.Now(), 2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := first.Save("movie", 7, sampleModel(), time.Now(), 2); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh store over the same directory sees the existing versions.
	second, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore reopen: %v", err)
	}
	if v, ok := second.LatestVersion("music"); !ok || v != 2 {
		t.Errorf("music latest = %d, %v; want 2, true", v, ok)
	}
	if v, ok := second.LatestVersion("movie"); !ok || v != 7 {
		t.Errorf("movie latest = %d, %v; want 7, true", v, ok)
	}
	if _, ok := second.LatestVersion("other"); ok {
		t.Error("unknown pipeline reported a version")
	}
}

func TestStorePrune(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for v := 1; v <= 5; v++ {
		if _, err := s.Save("music", v, sampleModel(), time.Now(), 2); err != nil {
			t.Fatalf("Save v%d: %v", v, err)
		}
	}
	// Other pipelines are untouched by a prune.
	if _, err := s.Save("movie", 1, sampleModel(), time.Now(), 2); err != nil {
		t.Fatalf("Save movie: %v", err)
	}

	if err := s.Prune("music", 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	remaining := make(map[string]bool)
	for _, e := range entries {
		remaining[e.Name()] = true
	}
	for _, want := range []string{"music_v4.gob.gz", "music_v5.gob.gz", "movie_v1.gob.gz"} {
		if !remaining[want] {
			t.Errorf("%s missing after prune; have %v", want, remaining)
		}
	}
	for _, gone := range []string{"music_v1.gob.gz", "music_v2.gob.gz", "music_v3.gob.gz"} {
		if remaining[gone] {
			t.Errorf("%s should have been pruned", gone)
		}
	}

	// Pruned versions no longer load; the latest still does.
	var got testModel
	if _, err := s.Load("music", 1, &got); err == nil {
		t.Error("pruned version still loadable")
	}
	if _, err := s.Load("music", 0, &got); err != nil {
		t.Errorf("latest version failed to load after prune: %v", err)
	}
}

func TestStorePruneUnderKeep(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.Save("music", 1, sampleModel(), time.Now(), 2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Prune("music", 3); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	var got testModel
	if _, err := s.Load("music", 1, &got); err != nil {
		t.Errorf("only version removed by prune: %v", err)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		pipeline string
		version  int
		ok       bool
	}{
		{"music_v1.gob.gz", "music", 1, true},
		{"movie_v42.gob.gz", "movie", 42, true},
		{"two_words_v3.gob.gz", "two_words", 3, true},
		{"music_v1.gob.gz.tmp", "", 0, false},
		{"music_v0.gob.gz", "", 0, false},
		{"music_v-1.gob.gz", "", 0, false},
		{"music_vx.gob.gz", "", 0, false},
		{"_v1.gob.gz", "", 0, false},
		{"music.gob.gz", "", 0, false},
		{"readme.md", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, v, ok := parseFilename(tt.name)
			if ok != tt.ok || p != tt.pipeline || v != tt.version {
				t.Errorf("parseFilename(%q) = %q, %d, %v; want %q, %d, %v",
					tt.name, p, v, ok, tt.pipeline, tt.version, tt.ok)
			}
		})
	}
}
