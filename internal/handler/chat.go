package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-forge/internal/model"
)

// Replier is the part of service.ChatService the handler calls.
type Replier interface {
	Reply(ctx context.Context, profile model.GeneratedProfile, history []model.ChatMessage, message string) string
}

type ChatHandler struct {
	chat   Replier
	logger *slog.Logger
}

func NewChatHandler(chat Replier, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

type chatRequest struct {
	Profile model.GeneratedProfile `json:"profile"`
	History []model.ChatMessage    `json:"history"`
	Message string                 `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat answers a visitor's question about a profile.
//
// HTTP: POST /api/chat
// REQUEST BODY: {"profile": {...}, "history": [{"role": "user"|"model", "text": "..."}], "message": "..."}
//
// Always 200 once the body parses: chat failures come back as a polite reply.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply := h.chat.Reply(r.Context(), req.Profile, req.History, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
