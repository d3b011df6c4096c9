// Package apperror defines the error taxonomy shared by every layer.
//
// Services return *AppError values wrapping one of the sentinels below.
// Handlers never inspect messages; they map the sentinel to an HTTP status
// (see handler.writeError). Anything that is not an *AppError is treated as an
// unclassified failure and surfaces as a generic 500.
package apperror

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("Validation Error")
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")
	ErrTransient     = errors.New("transient service error")
	ErrIncomplete    = errors.New("incomplete content")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message, safe to show to callers
	Field   string // Optional: field causing the error
	Status  int    // Optional: upstream HTTP status for ErrUpstream
	Cause   error  // Optional: underlying error, never shown to callers
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause, so
// errors.Is(err, ErrTransient) and errors.Is(err, context.DeadlineExceeded)
// can both hold for the same error.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingCredential reports that a required service credential is not
// configured. Handlers map this to 503; it is never retried.
func MissingCredential(service string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("%s is not configured", service),
	}
}

// Upstream reports a non-success response from an external source.
// The status is forwarded to the caller as-is.
func Upstream(source string, status int, message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
		Status:  status,
		Cause:   fmt.Errorf("%s returned status %d", source, status),
	}
}

// Exhausted is the aggregated failure raised after the last retry attempt.
func Exhausted(op string, attempts int, last error) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: fmt.Sprintf("%s failed after %d attempts", op, attempts),
		Cause:   last,
	}
}

// Timeout reports that op did not complete within d.
func Timeout(op string, d time.Duration) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: fmt.Sprintf("%s timed out after %dms", op, d.Milliseconds()),
	}
}

// Incomplete reports a syntactically valid AI response that lacks
// semantically required fields. It is fatal: retrying the same prompt is not
// expected to help.
func Incomplete(message string) *AppError {
	return &AppError{
		Err:     ErrIncomplete,
		Message: message,
	}
}
