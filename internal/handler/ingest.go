package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/service"
)

// Ingester is the part of service.IngestService the handlers call.
type Ingester interface {
	GitHub(ctx context.Context, urlOrUsername string) (*model.GitHubProfile, error)
	LinkedIn(ctx context.Context, profileURL, text string) (*model.LinkedInProfile, error)
	Unified(ctx context.Context, req service.UnifiedRequest) (model.UnifiedProfile, error)
}

type IngestHandler struct {
	ingest Ingester
	logger *slog.Logger
}

func NewIngestHandler(ingest Ingester, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{ingest: ingest, logger: logger}
}

type githubRequest struct {
	URL string `json:"url"`
}

type linkedinRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// HandleGitHub: POST /api/ingest/github {"url": "https://github.com/alice"}
// A bare username is accepted too. Upstream GitHub failures keep their status.
func (h *IngestHandler) HandleGitHub(w http.ResponseWriter, r *http.Request) {
	var req githubRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.ingest.GitHub(r.Context(), req.URL)
	if err != nil {
		h.logger.Warn("github ingest failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleLinkedIn: POST /api/ingest/linkedin {"url": "...", "text": "pasted profile"}
func (h *IngestHandler) HandleLinkedIn(w http.ResponseWriter, r *http.Request) {
	var req linkedinRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.ingest.LinkedIn(r.Context(), req.URL, req.Text)
	if err != nil {
		h.logger.Warn("linkedin ingest failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUnified: POST /api/ingest/unified
//
// Body is either pre-fetched data:
//
//	{"githubData": {...}, "linkedinData": {...}}
//
// or URLs to fetch:
//
//	{"githubUrl": "...", "linkedinUrl": "...", "linkedinText": "..."}
func (h *IngestHandler) HandleUnified(w http.ResponseWriter, r *http.Request) {
	var req service.UnifiedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.ingest.Unified(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
