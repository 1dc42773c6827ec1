// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newAdapterLogger(buf *bytes.Buffer) *slog.Logger {
	zl := zerolog.New(buf)
	return slog.New(NewSlogHandlerWithLogger(zl))
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestSlogHandlerPassthrough(t *testing.T) {
	var buf bytes.Buffer
	logger := newAdapterLogger(&buf)

	logger.Info("service started", "port", int64(8480), "ready", true)

	entry := decodeEntry(t, &buf)
	if entry["message"] != "service started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["port"] != float64(8480) || entry["ready"] != true {
		t.Errorf("attrs = %v", entry)
	}
}

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
	}
	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(old)

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newAdapterLogger(&buf)
			logger.Log(context.Background(), tt.level, "msg")

			entry := decodeEntry(t, &buf)
			if entry["level"] != tt.want {
				t.Errorf("level = %v, want %v", entry["level"], tt.want)
			}
		})
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newAdapterLogger(&buf).With("service", "trainer")

	logger.Info("tick")

	entry := decodeEntry(t, &buf)
	if entry["service"] != "trainer" {
		t.Errorf("persistent attr missing: %v", entry)
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newAdapterLogger(&buf).WithGroup("http")

	logger.Info("request", "status", int64(200))

	entry := decodeEntry(t, &buf)
	if entry["http.status"] != float64(200) {
		t.Errorf("grouped key missing: %v", entry)
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  zerolog.Level
	}{
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelDebug - 4, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.level); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
