package handler

import (
	"log/slog"
	"net/http"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth: GET /healthz. 503 when the feedback database is unreachable.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
