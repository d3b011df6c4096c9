package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/portfolio-forge/internal/model"
)

// Inbox is the part of service.FeedbackService the handlers call.
type Inbox interface {
	Submit(ctx context.Context, name, email, message string) (*model.Feedback, error)
	List(ctx context.Context, limit, offset int) ([]model.Feedback, error)
	Get(ctx context.Context, id string) (*model.Feedback, error)
	DraftReply(ctx context.Context, id, ownerName string) (*model.Feedback, error)
}

// FeedbackHandler serves the visitor feedback form and the owner's inbox.
type FeedbackHandler struct {
	inbox  Inbox
	logger *slog.Logger
}

func NewFeedbackHandler(inbox Inbox, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{inbox: inbox, logger: logger}
}

type submitFeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type draftReplyRequest struct {
	OwnerName string `json:"ownerName"`
}

// HandleSubmit stores a visitor message.
//
// HTTP: POST /api/feedback
// REQUEST BODY: {"name": "Sam", "email": "sam@example.com", "message": "..."}
// RESPONSE: 201 Created with the classified Feedback
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fb, err := h.inbox.Submit(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

// HandleList returns the inbox newest first.
//
// HTTP: GET /api/feedback?limit=20&offset=40
//
// QUERY PARAMETERS:
// strconv.Atoi fails on "" and garbage alike; both fall back to 0, which
// the service turns into its defaults.
func (h *FeedbackHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.inbox.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGet: GET /api/feedback/{id}
func (h *FeedbackHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	fb, err := h.inbox.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// HandleDraftReply drafts and attaches a reply.
//
// HTTP: POST /api/feedback/{id}/reply
// REQUEST BODY: {"ownerName": "Jane"} (optional)
func (h *FeedbackHandler) HandleDraftReply(w http.ResponseWriter, r *http.Request) {
	var req draftReplyRequest
	// An empty body is fine: the owner name is optional.
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	fb, err := h.inbox.DraftReply(r.Context(), r.PathValue("id"), req.OwnerName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}
