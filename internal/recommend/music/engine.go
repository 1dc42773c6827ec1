// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package music

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastevec/tastevec/internal/recommend"
)

// DefaultLimit is the result count when the caller does not specify one.
const DefaultLimit = 10

// snapshot is an immutable trained model. A rebuild constructs a fresh
// snapshot and publishes it atomically, so readers observe either the
// pre-rebuild or post-rebuild tables intact, never a half-built one.
type snapshot struct {
	// order holds identity keys in first-seen catalog order. It defines
	// both the candidate enumeration and the tie-break for equal scores.
	order     []string
	tracks    map[string]Track
	table     map[string]recommend.Embedding
	version   int
	trainedAt time.Time
}

// Engine owns the music pipeline: catalog deduplication, the item
// tower, and similarity ranking. Safe for concurrent use; training
// swaps the model snapshot atomically.
type Engine struct {
	logger zerolog.Logger

	snap    atomic.Pointer[snapshot]
	trainMu sync.Mutex
	version int
}

// NewEngine creates a music recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "music-engine").Logger(),
	}
}

// Train rebuilds the catalog and item-embedding table from a full
// listening history. Duplicate tracks collapse to the first-seen row.
// The previous snapshot stays live until the new one is published.
func (e *Engine) Train(ctx context.Context, history []Track) error {
	if len(history) == 0 {
		return recommend.ErrEmptyCatalog
	}

	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	start := time.Now()

	order := make([]string, 0, len(history))
	tracks := make(map[string]Track, len(history))
	table := make(map[string]recommend.Embedding, len(history))

	for _, t := range history {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := t.Key()
		if _, seen := tracks[key]; seen {
			continue
		}
		order = append(order, key)
		tracks[key] = t
		table[key] = EncodeTrack(t)
	}

	e.version++
	e.snap.Store(&snapshot{
		order:     order,
		tracks:    tracks,
		table:     table,
		version:   e.version,
		trainedAt: time.Now(),
	})

	e.logger.Info().
		Int("history_rows", len(history)).
		Int("catalog_size", len(order)).
		Int("version", e.version).
		Dur("duration", time.Since(start)).
		Msg("music model trained")

	return nil
}

// Recommend ranks the full catalog against the user vector derived
// from history and returns the top results. An all-zero user vector
// (no usable history) still returns results, all scored 0, ordered by
// catalog enumeration. limit <= 0 uses DefaultLimit.
func (e *Engine) Recommend(ctx context.Context, history []Track, limit int) ([]Recommendation, error) {
	s := e.snap.Load()
	if s == nil {
		return nil, recommend.ErrNotTrained
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	userVec := EncodeListener(history, s.table)

	scored := make([]recommend.Scored, 0, len(s.order))
	for _, key := range s.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scored = append(scored, recommend.Scored{
			Key:   key,
			Score: recommend.Cosine(userVec, s.table[key]),
		})
	}

	top := recommend.TopK(scored, limit)

	recs := make([]Recommendation, 0, len(top))
	for _, sc := range top {
		t := s.tracks[sc.Key]
		recs = append(recs, Recommendation{
			Key:    sc.Key,
			Title:  t.Title,
			Artist: t.Artist,
			Genre:  t.Genre,
			Mood:   t.Mood,
			Score:  sc.Score,
		})
	}

	return recs, nil
}

// Trained reports whether a snapshot has been published.
func (e *Engine) Trained() bool {
	return e.snap.Load() != nil
}

// Version returns the current model version, 0 if never trained.
func (e *Engine) Version() int {
	if s := e.snap.Load(); s != nil {
		return s.version
	}
	return 0
}

// LastTrainedAt returns when the current snapshot was built.
func (e *Engine) LastTrainedAt() time.Time {
	if s := e.snap.Load(); s != nil {
		return s.trainedAt
	}
	return time.Time{}
}

// CatalogSize returns the number of deduplicated catalog entries.
func (e *Engine) CatalogSize() int {
	if s := e.snap.Load(); s != nil {
		return len(s.order)
	}
	return 0
}

// Model is the serializable trained state, used for persistence.
type Model struct {
	Order     []string
	Tracks    map[string]Track
	Table     map[string]recommend.Embedding
	Version   int
	TrainedAt time.Time
}

// Export returns a copy of the current snapshot for persistence,
// or false if the engine has never been trained.
func (e *Engine) Export() (*Model, bool) {
	s := e.snap.Load()
	if s == nil {
		return nil, false
	}
	return &Model{
		Order:     s.order,
		Tracks:    s.tracks,
		Table:     s.table,
		Version:   s.version,
		TrainedAt: s.trainedAt,
	}, true
}

// Restore publishes a previously exported model as the live snapshot.
func (e *Engine) Restore(m *Model) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	if m.Version > e.version {
		e.version = m.Version
	}
	e.snap.Store(&snapshot{
		order:     m.Order,
		tracks:    m.Tracks,
		table:     m.Table,
		version:   m.Version,
		trainedAt: m.TrainedAt,
	})

	e.logger.Info().
		Int("catalog_size", len(m.Order)).
		Int("version", m.Version).
		Msg("music model restored")
}
