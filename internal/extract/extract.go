// Package extract is the boundary between untrusted model output and typed
// internal state. Every AI payload passes through JSON or Validated before
// any other code looks at it; neither function ever returns an error or
// panics, they hand back the caller's fallback instead.
package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// sampleLen bounds how much offending text goes into a warning log line.
const sampleLen = 100

// Clean strips Markdown code fences (```json ... ``` or ``` ... ```) and
// surrounding whitespace. Text before the first fence is discarded.
func Clean(text string) string {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "```"); i > 0 && !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		s = s[i:]
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the info string (json, JSON, ...) up to the first newline.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

// JSON parses text into a T. Empty or malformed input logs a warning with a
// short sample and returns fallback unchanged.
func JSON[T any](logger *slog.Logger, text string, fallback T) T {
	cleaned := Clean(text)
	if cleaned == "" {
		warn(logger, "empty model response", text, nil)
		return fallback
	}

	var v T
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		warn(logger, "model response is not valid JSON", cleaned, err)
		return fallback
	}
	return v
}

// Validated is JSON plus a schema check: payloads that parse but do not
// conform to schema also yield fallback.
func Validated[T any](logger *slog.Logger, text string, schema *Schema, fallback T) T {
	cleaned := Clean(text)
	if cleaned == "" {
		warn(logger, "empty model response", text, nil)
		return fallback
	}
	if err := schema.Validate([]byte(cleaned)); err != nil {
		warn(logger, "model response does not match expected shape", cleaned, err)
		return fallback
	}
	return JSON(logger, cleaned, fallback)
}

// Schema is a compiled JSON Schema describing an expected model output.
type Schema struct {
	source   string
	compiled *gojsonschema.Schema
}

// NewSchema compiles a JSON Schema document.
func NewSchema(source string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("extract: compiling schema: %w", err)
	}
	return &Schema{source: source, compiled: compiled}, nil
}

// MustSchema is NewSchema for package-level schema literals.
func MustSchema(source string) *Schema {
	s, err := NewSchema(source)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the schema source, ready to embed in a prompt.
func (s *Schema) String() string {
	return s.source
}

// Validate checks a raw JSON document against the schema.
func (s *Schema) Validate(doc []byte) error {
	res, err := s.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("extract: validating document: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

func warn(logger *slog.Logger, msg, text string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{slog.String("sample", sample(text))}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Warn(msg, attrs...)
}

func sample(s string) string {
	r := []rune(s)
	if len(r) <= sampleLen {
		return s
	}
	return string(r[:sampleLen]) + "..."
}
