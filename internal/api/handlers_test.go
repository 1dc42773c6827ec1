// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tastevec/tastevec/internal/config"
	"github.com/tastevec/tastevec/internal/ingest"
	"github.com/tastevec/tastevec/internal/recommend/movie"
	"github.com/tastevec/tastevec/internal/recommend/music"
)

// fakeTrainer records retrain notifications without training anything.
type fakeTrainer struct {
	calls []string
}

func (f *fakeTrainer) Retrain(pipeline string) {
	f.calls = append(f.calls, pipeline)
}

type testEnv struct {
	handler     *Handler
	musicEngine *music.Engine
	movieEngine *movie.Engine
	store       *ingest.Store
	trainer     *fakeTrainer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		musicEngine: music.NewEngine(zerolog.Nop()),
		movieEngine: movie.NewEngine(zerolog.Nop()),
		store:       ingest.NewStore(),
		trainer:     &fakeTrainer{},
	}
	cfg := config.RecommendConfig{
		ModelPath:         t.TempDir(),
		KeepVersions:      3,
		DefaultMusicLimit: 10,
		DefaultMovieLimit: 20,
		MaxUploadBytes:    1 << 20,
	}
	env.handler = NewHandler(env.musicEngine, env.movieEngine, env.store, env.trainer, cfg, zerolog.Nop())
	return env
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.handler.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Status != "success" {
		t.Errorf("status field = %q", resp.Status)
	}
}

func TestHealthReadyReportsTrainedFlags(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.handler.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when untrained", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", resp.Data)
	}
	if data["music_trained"] != false || data["movie_trained"] != false {
		t.Errorf("trained flags = %v", data)
	}
}

func TestUploadMusicHistory(t *testing.T) {
	env := newTestEnv(t)
	csv := "title,artist,genre\nSong A,Artist A,Pop\nSong B,Artist B,Rock\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/music/history", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	env.handler.UploadMusicHistory(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if rows, _, _ := env.store.Counts(); rows != 2 {
		t.Errorf("store history rows = %d, want 2", rows)
	}
	if len(env.trainer.calls) != 1 || env.trainer.calls[0] != "music" {
		t.Errorf("trainer calls = %v, want [music]", env.trainer.calls)
	}
}

func TestUploadMusicHistoryEmpty(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/music/history", strings.NewReader("title,artist\n"))
	rec := httptest.NewRecorder()
	env.handler.UploadMusicHistory(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "EMPTY_UPLOAD" {
		t.Errorf("error = %+v, want EMPTY_UPLOAD", resp.Error)
	}
	if len(env.trainer.calls) != 0 {
		t.Errorf("empty upload triggered retrain: %v", env.trainer.calls)
	}
}

func TestUploadMusicHistoryInvalidCSV(t *testing.T) {
	env := newTestEnv(t)
	body := "title,artist\n\"unterminated,quote\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/music/history", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.UploadMusicHistory(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "INVALID_CSV" {
		t.Errorf("error = %+v, want INVALID_CSV", resp.Error)
	}
}

func TestMusicRecommendationsNotTrained(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/music/recommendations", nil)
	rec := httptest.NewRecorder()
	env.handler.MusicRecommendations(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "NOT_TRAINED" {
		t.Errorf("error = %+v, want NOT_TRAINED", resp.Error)
	}
}

func TestMusicRecommendationsTrained(t *testing.T) {
	env := newTestEnv(t)
	history := []music.Track{
		{Title: "Song A", Artist: "Artist A", Genre: "Pop", CompletionRate: 0.9, Rating: 4},
		{Title: "Song B", Artist: "Artist B", Genre: "Rock", CompletionRate: 0.8, Rating: 3},
	}
	if err := env.musicEngine.Train(context.Background(), history); err != nil {
		t.Fatalf("Train: %v", err)
	}
	env.store.ReplaceHistory(history)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/music/recommendations?limit=1", nil)
	rec := httptest.NewRecorder()
	env.handler.MusicRecommendations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	if count, _ := data["count"].(float64); count != 1 {
		t.Errorf("count = %v, want 1 (limit applied)", data["count"])
	}
}

func TestMusicRecommendationsInvalidLimit(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/music/recommendations?limit=-5", nil)
	rec := httptest.NewRecorder()
	env.handler.MusicRecommendations(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadMovieRatings(t *testing.T) {
	env := newTestEnv(t)
	csv := "userId,movieId,rating\nalice,m1,5\nbob,m1,4\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies/ratings", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	env.handler.UploadMovieRatings(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if _, rows, _ := env.store.Counts(); rows != 2 {
		t.Errorf("rating rows = %d, want 2", rows)
	}
	if len(env.trainer.calls) != 1 || env.trainer.calls[0] != "movie" {
		t.Errorf("trainer calls = %v, want [movie]", env.trainer.calls)
	}
}

func TestUploadMovieCatalogKeepsRatings(t *testing.T) {
	env := newTestEnv(t)

	ratingsReq := httptest.NewRequest(http.MethodPost, "/api/v1/movies/ratings",
		strings.NewReader("userId,movieId,rating\nalice,m1,5\n"))
	env.handler.UploadMovieRatings(httptest.NewRecorder(), ratingsReq)

	catalogReq := httptest.NewRequest(http.MethodPost, "/api/v1/movies/catalog",
		strings.NewReader("movieId,title,genres,year\nm1,Heat,Crime,1995\n"))
	rec := httptest.NewRecorder()
	env.handler.UploadMovieCatalog(rec, catalogReq)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	_, ratingRows, movieRows := env.store.Counts()
	if ratingRows != 1 || movieRows != 1 {
		t.Errorf("counts = %d ratings, %d movies; want 1, 1", ratingRows, movieRows)
	}
}

func TestMovieRecommendationsRequiresUserID(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/recommendations", nil)
	rec := httptest.NewRecorder()
	env.handler.MovieRecommendations(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "MISSING_USER_ID" {
		t.Errorf("error = %+v, want MISSING_USER_ID", resp.Error)
	}
}

func TestMovieRecommendationsNotTrained(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/recommendations?user_id=alice", nil)
	rec := httptest.NewRecorder()
	env.handler.MovieRecommendations(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestMovieRecommendationsExcludesRated(t *testing.T) {
	env := newTestEnv(t)
	ratings := []movie.Rating{
		{UserID: "alice", MovieID: "m1", Rating: 5},
		{UserID: "bob", MovieID: "m1", Rating: 4},
		{UserID: "bob", MovieID: "m2", Rating: 3},
	}
	if err := env.movieEngine.Train(context.Background(), ratings, nil, time.Time{}); err != nil {
		t.Fatalf("Train: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/recommendations?user_id=alice", nil)
	rec := httptest.NewRecorder()
	env.handler.MovieRecommendations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	items := data["items"].([]any)
	for _, item := range items {
		m := item.(map[string]any)
		if m["movie_id"] == "m1" {
			t.Error("already-rated movie returned to alice")
		}
	}
}

func TestMovieStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	// Untrained first.
	rec := httptest.NewRecorder()
	env.handler.MovieStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/stats", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("untrained status = %d, want 503", rec.Code)
	}

	ratings := []movie.Rating{
		{UserID: "alice", MovieID: "m1", Rating: 5},
		{UserID: "bob", MovieID: "m2", Rating: 3},
	}
	if err := env.movieEngine.Train(context.Background(), ratings, nil, time.Time{}); err != nil {
		t.Fatalf("Train: %v", err)
	}

	rec = httptest.NewRecorder()
	env.handler.MovieStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	if users, _ := data["users"].(float64); users != 2 {
		t.Errorf("users = %v, want 2", data["users"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.store.ReplaceHistory([]music.Track{{Title: "A", Artist: "X"}})

	rec := httptest.NewRecorder()
	env.handler.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	musicData := data["music"].(map[string]any)
	if trained, _ := musicData["trained"].(bool); trained {
		t.Error("untrained engine reported trained")
	}
	if rows, _ := musicData["history_rows"].(float64); rows != 1 {
		t.Errorf("history_rows = %v, want 1", musicData["history_rows"])
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	env.handler.cfg.MaxUploadBytes = 16

	body := "title,artist\nSong A,Artist A\nSong B,Artist B\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/music/history", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.UploadMusicHistory(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized upload", rec.Code)
	}
}

func TestGetIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"limit=5", 5},
		{"limit=abc", 7},
		{"", 7},
		{"limit=", 7},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if got := getIntParam(req, "limit", 7); got != tt.want {
			t.Errorf("getIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	in := "bad\nvalue\twith\x00controls"
	got := sanitizeLogValue(in)
	if strings.ContainsAny(got, "\n\t\x00") {
		t.Errorf("control characters survived: %q", got)
	}
	if !strings.Contains(got, `\x0a`) {
		t.Errorf("newline not escaped: %q", got)
	}
}
