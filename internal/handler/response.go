package handler

// RESPONSE HELPERS:
// These functions standardise how we read JSON requests and send JSON
// responses and errors.
//
//	decodeJSON(w, r, &req)        // 400 on a bad body
//	writeJSON(w, http.StatusOK, data)
//	writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//   {"error": "not_found", "message": "GitHub user not found with id ghost"}
//
// The share endpoints keep the envelope their clients already parse:
//   {"success": false, "error": "Portfolio not found"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-forge/internal/apperror"
)

// maxBodyBytes caps request bodies. Pasted LinkedIn pages are the largest
// legitimate payload.
const maxBodyBytes = 2 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written; once
// json.Encode calls w.Write, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// decodeJSON reads the request body into dst. On failure it writes a 400
// and returns false, so handlers can simply return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON body",
		})
		return false
	}
	return true
}

// classify maps a domain error to an HTTP status, a machine-readable type
// and a message that is safe to show the client.
//
// ERROR MAPPING:
// errors.Is walks the whole chain, including both branches of an
// AppError (its sentinel and its cause), so a service may wrap freely with
// fmt.Errorf("...: %w", err).
//
//	ErrValidation    → 400
//	ErrNotFound      → 404
//	ErrConfiguration → 503 (a credential is missing)
//	ErrUpstream      → the upstream status, 502 if unknown
//	anything else    → 500
func classify(err error) (status int, errorType, message string) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// NEVER expose internal error details: raw messages can carry SQL,
		// file paths or upstream bodies.
		return http.StatusInternalServerError, "internal_error", "An internal error occurred"
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error", appErr.Message
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found", appErr.Message
	case errors.Is(err, apperror.ErrConfiguration):
		return http.StatusServiceUnavailable, "configuration_error", appErr.Message
	case errors.Is(err, apperror.ErrUpstream):
		status := appErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, "upstream_error", appErr.Message
	case errors.Is(err, apperror.ErrIncomplete):
		return http.StatusInternalServerError, "incomplete_content", appErr.Message
	case errors.Is(err, apperror.ErrTransient):
		return http.StatusInternalServerError, "ai_unavailable", appErr.Message
	default:
		return http.StatusInternalServerError, "internal_error", appErr.Message
	}
}

// writeError maps a domain error to the appropriate HTTP response.
func writeError(w http.ResponseWriter, err error) {
	status, errorType, message := classify(err)
	writeJSON(w, status, ErrorResponse{Error: errorType, Message: message})
}

// ShareErrorResponse is the error envelope of the share endpoints.
type ShareErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeShareError sends err in the share envelope. fallback replaces the
// message of errors that are not the client's fault.
func writeShareError(w http.ResponseWriter, err error, fallback string) {
	status, _, message := classify(err)
	if status >= http.StatusInternalServerError {
		message = fallback
	}
	writeJSON(w, status, ShareErrorResponse{Success: false, Error: message})
}
