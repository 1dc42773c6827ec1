// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metadata describes one stored model file.
type Metadata struct {
	// Pipeline is the model owner, "music" or "movie".
	Pipeline string `json:"pipeline"`

	// Version is the model version, monotonically increasing.
	Version int `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the file was written.
	SavedAt time.Time `json:"saved_at"`

	// ItemCount is the number of catalog entries in the table.
	ItemCount int `json:"item_count"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata   Metadata
	Compressed []byte
}

// Store manages versioned model files under one directory.
// All operations are safe for concurrent use.
type Store struct {
	baseDir string

	mu       sync.RWMutex
	versions map[string]int // pipeline -> latest version on disk
}

// NewStore opens (creating if needed) a model store directory and
// scans it for existing versions.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan model directory: %w", err)
	}
	return s, nil
}

// scan records the latest on-disk version per pipeline.
func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pipeline, version, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}
		if current := s.versions[pipeline]; version > current {
			s.versions[pipeline] = version
		}
	}
	return nil
}

// parseFilename extracts pipeline and version from "{pipeline}_v{n}.gob.gz".
func parseFilename(name string) (pipeline string, version int, ok bool) {
	name, found := strings.CutSuffix(name, ".gob.gz")
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(name, "_v")
	if idx < 1 {
		return "", 0, false
	}
	v, err := strconv.Atoi(name[idx+2:])
	if err != nil || v < 1 {
		return "", 0, false
	}
	return name[:idx], v, true
}

func (s *Store) path(pipeline string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", pipeline, version))
}

// Save serializes model under the pipeline name at the given version.
// The write is atomic: a temporary file is renamed into place.
func (s *Store) Save(pipeline string, version int, model any, trainedAt time.Time, itemCount int) (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(model); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := Metadata{
		Pipeline:  pipeline,
		Version:   version,
		TrainedAt: trainedAt,
		SavedAt:   time.Now(),
		ItemCount: itemCount,
		Checksum:  hex.EncodeToString(hash[:]),
		SizeBytes: int64(compressed.Len()),
	}

	final := s.path(pipeline, version)
	tmp := final + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path built from trusted pipeline name
	if err != nil {
		return nil, fmt.Errorf("create model file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(storedFile{Metadata: meta, Compressed: compressed.Bytes()}); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("publish model file: %w", err)
	}

	if version > s.versions[pipeline] {
		s.versions[pipeline] = version
	}
	return &meta, nil
}

// Load reads a model into target. version 0 loads the latest. The
// checksum is verified before decoding; a mismatch is an error.
func (s *Store) Load(pipeline string, version int, target any) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		v, ok := s.versions[pipeline]
		if !ok {
			return nil, fmt.Errorf("no stored model for %s", pipeline)
		}
		version = v
	}

	f, err := os.Open(s.path(pipeline, version)) //nolint:gosec // path built from trusted pipeline name
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.Compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed model: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch for %s v%d: expected %s, got %s",
			pipeline, version, sf.Metadata.Checksum, got)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the newest stored version for a pipeline.
func (s *Store) LatestVersion(pipeline string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[pipeline]
	return v, ok
}

// Prune removes old versions of a pipeline's models, keeping the
// newest keep versions. keep < 1 is treated as 1.
func (s *Store) Prune(pipeline string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read model directory: %w", err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		p, v, ok := parseFilename(entry.Name())
		if ok && p == pipeline {
			versions = append(versions, v)
		}
	}
	if len(versions) <= keep {
		return nil
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	for _, v := range versions[keep:] {
		if err := os.Remove(s.path(pipeline, v)); err != nil {
			return fmt.Errorf("remove model v%d: %w", v, err)
		}
	}
	return nil
}
