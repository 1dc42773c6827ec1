// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package movie

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastevec/tastevec/internal/recommend"
)

// DefaultLimit is the result count when the caller does not specify one.
const DefaultLimit = 20

// snapshot is an immutable trained model, published atomically on each
// rebuild so readers never observe a half-built table.
type snapshot struct {
	// order holds movie ids in catalog enumeration order: metadata
	// order first, then rated-only movies in first-rating order. It
	// defines candidate enumeration and the equal-score tie-break.
	order  []string
	movies map[string]*Movie
	stats  *Stats
	table  map[string]recommend.Embedding
	// byUser holds each user's ratings in record order, for the user
	// tower and the already-rated exclusion rule.
	byUser map[string][]Rating

	version   int
	trainedAt time.Time
}

// Engine owns the movie pipeline: statistics building, the item tower
// and exclusion-aware similarity ranking. Safe for concurrent use.
type Engine struct {
	logger zerolog.Logger

	snap    atomic.Pointer[snapshot]
	trainMu sync.Mutex
	version int
}

// NewEngine creates a movie recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "movie-engine").Logger(),
	}
}

// Train rebuilds statistics and the movie-embedding table from the
// full rating set and optional metadata. evalTime anchors the trailing
// recency window; zero means now. The previous snapshot stays live
// until the new one is published.
func (e *Engine) Train(ctx context.Context, ratings []Rating, metas []Movie, evalTime time.Time) error {
	if len(ratings) == 0 {
		return recommend.ErrEmptyCatalog
	}

	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	start := time.Now()

	stats := BuildStats(ratings, evalTime)

	movies := make(map[string]*Movie, len(metas))
	order := make([]string, 0, len(stats.Movies)+len(metas))
	inOrder := make(map[string]struct{}, len(stats.Movies)+len(metas))
	for i := range metas {
		m := metas[i]
		id := NormalizeID(m.ID)
		if _, dup := inOrder[id]; dup {
			continue
		}
		movies[id] = &m
		inOrder[id] = struct{}{}
		order = append(order, id)
	}

	byUser := make(map[string][]Rating, len(stats.Users))
	for _, r := range ratings {
		if err := ctx.Err(); err != nil {
			return err
		}
		userID := NormalizeID(r.UserID)
		byUser[userID] = append(byUser[userID], r)

		movieID := NormalizeID(r.MovieID)
		if _, dup := inOrder[movieID]; !dup {
			inOrder[movieID] = struct{}{}
			order = append(order, movieID)
		}
	}

	table := make(map[string]recommend.Embedding, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		table[id] = EncodeMovie(id, stats.Movies[id], movies[id])
	}

	e.version++
	e.snap.Store(&snapshot{
		order:     order,
		movies:    movies,
		stats:     stats,
		table:     table,
		byUser:    byUser,
		version:   e.version,
		trainedAt: time.Now(),
	})

	e.logger.Info().
		Int("ratings", len(ratings)).
		Int("movies", len(order)).
		Int("users", len(stats.Users)).
		Int("version", e.version).
		Dur("duration", time.Since(start)).
		Msg("movie model trained")

	return nil
}

// Recommend ranks unseen movies for a user. Movies the user already
// rated are excluded from candidates before scoring. An unknown user
// gets a zero vector and therefore all-zero scores, still returned in
// catalog order rather than as an error. limit <= 0 uses DefaultLimit.
func (e *Engine) Recommend(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	s := e.snap.Load()
	if s == nil {
		return nil, recommend.ErrNotTrained
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	userID = NormalizeID(userID)
	userRatings := s.byUser[userID]

	rated := make(map[string]struct{}, len(userRatings))
	for _, r := range userRatings {
		rated[NormalizeID(r.MovieID)] = struct{}{}
	}

	userVec := EncodeViewer(s.stats.Users[userID], userRatings, s.table, s.movies)

	scored := make([]recommend.Scored, 0, len(s.order))
	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, seen := rated[id]; seen {
			continue
		}
		scored = append(scored, recommend.Scored{
			Key:   id,
			Score: recommend.Cosine(userVec, s.table[id]),
		})
	}

	top := recommend.TopK(scored, limit)

	recs := make([]Recommendation, 0, len(top))
	for _, sc := range top {
		rec := Recommendation{
			MovieID:   sc.Key,
			Score:     sc.Score,
			Predicted: predictRating(s.stats.Movies[sc.Key], sc.Score),
		}
		if meta := s.movies[sc.Key]; meta != nil {
			rec.Title = meta.Title
			rec.Genres = meta.Genres
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

// predictRating derives the display-only predicted rating from the
// movie's average rating and the similarity score, clamped to [1, 5].
// It never influences ranking.
func predictRating(st *MovieStats, similarity float64) float64 {
	var avg float64
	if st != nil {
		avg = st.Mean
	}
	return recommend.Clamp(avg+(similarity-0.5)*2, 1, 5)
}

// Summary returns aggregate counts and averages of the trained rating
// set, for display and monitoring only.
func (e *Engine) Summary() (Summary, error) {
	s := e.snap.Load()
	if s == nil {
		return Summary{}, recommend.ErrNotTrained
	}

	var sum float64
	var n int
	for _, us := range s.stats.Users {
		for _, r := range us.Ratings {
			sum += r
		}
		n += us.Count
	}

	out := Summary{
		Users:   len(s.stats.Users),
		Movies:  len(s.stats.Movies),
		Ratings: n,
	}
	if n > 0 {
		out.MeanRating = sum / float64(n)
	}
	return out, nil
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

// CatalogSize returns the number of movies in the current snapshot.
func (e *Engine) CatalogSize() int {
	if s := e.snap.Load(); s != nil {
		return len(s.order)
	}
	return 0
}

// Model is the serializable trained state, used for persistence.
type Model struct {
	Order     []string
	Movies    map[string]*Movie
	Stats     *Stats
	Table     map[string]recommend.Embedding
	ByUser    map[string][]Rating
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
		Movies:    s.movies,
		Stats:     s.stats,
		Table:     s.table,
		ByUser:    s.byUser,
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
		movies:    m.Movies,
		stats:     m.Stats,
		table:     m.Table,
		byUser:    m.ByUser,
		version:   m.Version,
		trainedAt: m.TrainedAt,
	})

	e.logger.Info().
		Int("movies", len(m.Order)).
		Int("version", m.Version).
		Msg("movie model restored")
}
