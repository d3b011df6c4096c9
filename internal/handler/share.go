package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/service"
)

// Sharer is the part of service.ShareService the handlers call.
type Sharer interface {
	Create(ctx context.Context, profile model.GeneratedProfile) (*service.ShareResult, error)
	Get(ctx context.Context, id string) (*model.GeneratedProfile, error)
}

type ShareHandler struct {
	share  Sharer
	logger *slog.Logger
}

func NewShareHandler(share Sharer, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{share: share, logger: logger}
}

type shareCreatedResponse struct {
	Success   bool      `json:"success"`
	ShareID   string    `json:"shareId"`
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type shareFetchedResponse struct {
	Success bool                   `json:"success"`
	Profile model.GeneratedProfile `json:"profile"`
}

// HandleCreate publishes a generated profile.
//
// HTTP: POST /api/share
// REQUEST BODY: a GeneratedProfile
// RESPONSE: {"success": true, "shareId": "aB3dE5fG", "shareUrl": "...", "expiresAt": "..."}
func (h *ShareHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var profile model.GeneratedProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, ShareErrorResponse{Error: "Invalid portfolio data"})
		return
	}

	res, err := h.share.Create(r.Context(), profile)
	if err != nil {
		h.logger.Error("share failed", slog.String("error", err.Error()))
		writeShareError(w, err, "Failed to share portfolio")
		return
	}

	writeJSON(w, http.StatusOK, shareCreatedResponse{
		Success:   true,
		ShareID:   res.ShareID,
		ShareURL:  res.ShareURL,
		ExpiresAt: res.ExpiresAt,
	})
}

// HandleGet returns a shared profile.
//
// HTTP: GET /api/share?id=aB3dE5fG
func (h *ShareHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.share.Get(r.Context(), r.URL.Query().Get("id"))
	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ShareErrorResponse{Error: "Share ID is required"})
		return
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ShareErrorResponse{Error: "Portfolio not found"})
		return
	case err != nil:
		h.logger.Error("share lookup failed", slog.String("error", err.Error()))
		writeShareError(w, err, "Failed to fetch portfolio")
		return
	}

	writeJSON(w, http.StatusOK, shareFetchedResponse{Success: true, Profile: *profile})
}
