package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/pagemeta/config"
)

func TestNewLogHandler_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		skipped slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			h := newLogHandler(config.LogConfig{Level: tt.level, Format: "json"})
			assert.True(t, h.Enabled(context.Background(), tt.enabled))
			assert.False(t, h.Enabled(context.Background(), tt.skipped))
		})
	}
}

func TestNewLogHandler_Format(t *testing.T) {
	_, isText := newLogHandler(config.LogConfig{Format: "text"}).(*slog.TextHandler)
	assert.True(t, isText)

	_, isJSON := newLogHandler(config.LogConfig{Format: "json"}).(*slog.JSONHandler)
	assert.True(t, isJSON)
}
