package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FORGE_TEST_SET", "value")
	t.Setenv("FORGE_TEST_EMPTY", "")

	assert.Equal(t, "value", envOr("FORGE_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", envOr("FORGE_TEST_EMPTY", "fallback"))
}
