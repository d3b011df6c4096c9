// Package handler contains the HTTP handlers of the portfolio API.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (query params, body, path values)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers contain no business logic. Each one depends on a small interface
// describing exactly the service methods it calls, which keeps the handler
// tests free of AI models, databases and network.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/service"
)

// Generator is the part of service.GenerationService the handlers call.
type Generator interface {
	AnalyzeTags(ctx context.Context, text string) service.TagResult
	GenerateProfile(ctx context.Context, in model.GenerateInput) (*model.GeneratedProfile, error)
}

// GenerateHandler serves the AI generation endpoints.
type GenerateHandler struct {
	gen    Generator
	logger *slog.Logger
}

func NewGenerateHandler(gen Generator, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, logger: logger}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// HandleAnalyze extracts keyword tags from free text.
//
// HTTP: POST /api/analyze
// REQUEST BODY: {"text": "I build Go services..."}
// RESPONSE: {"tags": ["Go", ...], "fallback": true?}
// A missing or blank text is a 400.
func (h *GenerateHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, apperror.ValidationFailed("text", "Text content is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.gen.AnalyzeTags(r.Context(), req.Text))
}

// HandleGenerate writes a full portfolio.
//
// HTTP: POST /api/generate
// REQUEST BODY: {"name", "role", "rawText", "linkedinUrl"?, "githubUrl"?}
//
// Generation can take close to a minute; the server's write timeout is set
// with that in mind.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var in model.GenerateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	profile, err := h.gen.GenerateProfile(r.Context(), in)
	if err != nil {
		h.logger.Warn("profile generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
