// Package main is the entry point for the portfolio-forge server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (from env vars)
// 2. Create the logger
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
//
// CONFIGURATION:
// Every setting comes from the environment. None is required: without AI
// credentials the server still starts, and the affected endpoints degrade.
//
//	PORT              listen port (8080)
//	AI_API_KEY        Anthropic key for generation (falls back to ANTHROPIC_API_KEY)
//	AI_MODEL          Anthropic model override
//	AI_BASE_URL       Anthropic endpoint override
//	CHAT_API_KEY      OpenRouter key for the chat assistant (falls back to OPENROUTER_API_KEY)
//	CHAT_MODEL        OpenRouter model override
//	CHAT_BASE_URL     OpenRouter endpoint override
//	PUBLIC_BASE_URL   origin used in share links (http://localhost:<port>)
//	DB_PATH           feedback database (data/portfolio.db)
//	REDIS_URL         share store; empty keeps shares in memory
//	GITHUB_TOKEN      personal access token for higher GitHub rate limits
//	GITHUB_API_URL    GitHub API override (https://api.github.com)
//	LOG_LEVEL         debug, info, warn or error (info)
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sakif/portfolio-forge/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))

	// === 2. READ CONFIGURATION ===
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := envOr("DB_PATH", "data/portfolio.db")

	// Ensure the data directory exists (like `mkdir -p`).
	// ":memory:" has no directory and filepath.Dir returns "." for it.
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	cfg := server.Config{
		Port:          port,
		DBPath:        dbPath,
		PublicBaseURL: envOr("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		RedisURL:      os.Getenv("REDIS_URL"),
		AIAPIKey:      envOr("AI_API_KEY", os.Getenv("ANTHROPIC_API_KEY")),
		AIModel:       os.Getenv("AI_MODEL"),
		AIBaseURL:     os.Getenv("AI_BASE_URL"),
		ChatAPIKey:    envOr("CHAT_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
		ChatModel:     os.Getenv("CHAT_MODEL"),
		ChatBaseURL:   os.Getenv("CHAT_BASE_URL"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL:  os.Getenv("GITHUB_API_URL"),
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
