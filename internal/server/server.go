// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects the stores, the outbound
// clients, the services and the handlers, and decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go reads the environment into a Config and calls New, which creates:
//
//	sqlite.DB            → FeedbackService → FeedbackHandler
//	redis or memory      → ShareService    → ShareHandler
//	ai.Claude (optional) → GenerationService → GenerateHandler
//	                                         ↘ ingest.LinkedIn → IngestService → IngestHandler
//	ingest.GitHub        ↗
//	ai.OpenRouter (opt.) → ChatService → ChatHandler
//
// Everything is assembled here, in the "composition root", and nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/portfolio-forge/internal/ai"
	"github.com/sakif/portfolio-forge/internal/handler"
	"github.com/sakif/portfolio-forge/internal/ingest"
	"github.com/sakif/portfolio-forge/internal/middleware"
	"github.com/sakif/portfolio-forge/internal/repository"
	"github.com/sakif/portfolio-forge/internal/repository/memory"
	redisRepo "github.com/sakif/portfolio-forge/internal/repository/redis"
	sqliteRepo "github.com/sakif/portfolio-forge/internal/repository/sqlite"
	"github.com/sakif/portfolio-forge/internal/service"
)

// Config holds server configuration.
//
// Every credential is optional. A missing AI key disables generation (503),
// a missing chat key turns chat into a canned answer, and a missing Redis URL
// falls back to the in-process share store.
type Config struct {
	Port   int
	DBPath string

	// PublicBaseURL is the origin share links point at.
	PublicBaseURL string
	RedisURL      string

	AIAPIKey  string
	AIModel   string
	AIBaseURL string

	ChatAPIKey  string
	ChatModel   string
	ChatBaseURL string

	GitHubToken  string
	GitHubAPIURL string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and, when configured, the Redis
// client. Both are released by Close, which Start calls during shutdown.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	closers []io.Closer
}

// New creates a new Server with the given config.
//
// WIRING ORDER:
//  1. Open the feedback database (sqlite.New runs migrations)
//  2. Pick the share store (Redis when REDIS_URL is set, memory otherwise)
//  3. Build the outbound clients that have credentials
//  4. Build services on top of the repository interfaces
//  5. Mount handlers on routes
//
// A partially built server closes whatever it already opened.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		closers: []io.Closer{db},
	}

	shares, err := s.shareStore()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening share store: %w", err)
	}

	s.setupRoutes(shares)
	return s, nil
}

func (s *Server) shareStore() (repository.ShareStore, error) {
	if s.config.RedisURL == "" {
		s.logger.Info("REDIS_URL not set, shares are kept in memory")
		return memory.NewShareStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := redisRepo.New(ctx, s.config.RedisURL)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, store)
	return store, nil
}

// generationModel returns nil when no key is configured.
//
// NIL INTERFACES:
// The function returns the ai.Model interface, not *ai.Claude. Returning a
// nil *ai.Claude wrapped in the interface would make `m == nil` false in the
// service, and every call would then fail inside the SDK instead of cleanly
// reporting a missing credential.
func (s *Server) generationModel() ai.Model {
	if s.config.AIAPIKey == "" {
		s.logger.Warn("AI_API_KEY not set, profile generation is disabled")
		return nil
	}
	return ai.NewClaude(ai.ClaudeConfig{
		APIKey:  s.config.AIAPIKey,
		Model:   s.config.AIModel,
		BaseURL: s.config.AIBaseURL,
	})
}

func (s *Server) chatModel() ai.Chatter {
	if s.config.ChatAPIKey == "" {
		s.logger.Warn("CHAT_API_KEY not set, the chat assistant answers with a fixed reply")
		return nil
	}
	return ai.NewOpenRouter(ai.OpenRouterConfig{
		APIKey:  s.config.ChatAPIKey,
		Model:   s.config.ChatModel,
		BaseURL: s.config.ChatBaseURL,
		Referer: s.config.PublicBaseURL,
		Title:   "Portfolio Forge",
	})
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/analyze               → Keyword tags for pasted text
// POST   /api/generate              → Full portfolio profile
// POST   /api/ingest/github         → GitHub user + repositories
// POST   /api/ingest/linkedin       → LinkedIn profile from pasted text
// POST   /api/ingest/unified        → Merged GitHub + LinkedIn profile
// POST   /api/share                 → Publish a profile for 30 days
// GET    /api/share?id=             → Fetch a shared profile
// POST   /api/chat                  → Visitor chat about a profile
// POST   /api/feedback              → Submit visitor feedback
// GET    /api/feedback              → Owner inbox, newest first
// GET    /api/feedback/{id}         → One feedback item
// POST   /api/feedback/{id}/reply   → Draft a reply
// GET    /healthz                   → Liveness + database check
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (the logger reads it)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. Logger: logs each request with timing info
func (s *Server) setupRoutes(shares repository.ShareStore) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Services ===
	generation := service.NewGenerationService(s.generationModel(), s.logger)
	github := ingest.NewGitHub(ingest.GitHubConfig{
		Token:   s.config.GitHubToken,
		BaseURL: s.config.GitHubAPIURL,
	}, s.logger)
	linkedin := ingest.NewLinkedIn(generation, s.logger)

	ingestService := service.NewIngestService(github, linkedin, s.logger)
	shareService := service.NewShareService(shares, s.config.PublicBaseURL, s.logger)
	feedbackService := service.NewFeedbackService(s.db, generation, s.logger)
	chatService := service.NewChatService(s.chatModel(), s.logger)

	// === Handlers ===
	generateHandler := handler.NewGenerateHandler(generation, s.logger)
	ingestHandler := handler.NewIngestHandler(ingestService, s.logger)
	shareHandler := handler.NewShareHandler(shareService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", generateHandler.HandleAnalyze)
		r.Post("/generate", generateHandler.HandleGenerate)

		r.Route("/ingest", func(r chi.Router) {
			r.Post("/github", ingestHandler.HandleGitHub)
			r.Post("/linkedin", ingestHandler.HandleLinkedIn)
			r.Post("/unified", ingestHandler.HandleUnified)
		})

		r.Post("/share", shareHandler.HandleCreate)
		r.Get("/share", shareHandler.HandleGet)

		r.Post("/chat", chatHandler.HandleChat)

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", feedbackHandler.HandleSubmit)
			r.Get("/", feedbackHandler.HandleList)
			r.Get("/{id}", feedbackHandler.HandleGet)
			r.Post("/{id}/reply", feedbackHandler.HandleDraftReply)
		})
	})
}

// Handler exposes the router so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database and the Redis client. Errors are joined so
// one failing close does not hide another.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database and Redis
//
// WriteTimeout is longer than the slowest AI tier (60s per attempt) so a
// generation that succeeds on its last attempt can still be written.
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing resources", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 4 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
