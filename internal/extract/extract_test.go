package extract

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type payload struct {
	A int `json:"a"`
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line fence", "```{\"a\":1}```", `{"a":1}`},
		{"preamble before fence", "Here you go:\n```json\n[1,2]\n```", `[1,2]`},
		{"surrounding whitespace", "  \n{\"a\":1}\n\t", `{"a":1}`},
		{"backticks inside json", "{\"a\":\"```x```\"}", "{\"a\":\"```x```\"}"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestJSON_NeverFails(t *testing.T) {
	fallback := payload{A: -1}

	tests := []struct {
		name string
		in   string
		want payload
	}{
		{"malformed", "not json", fallback},
		{"empty", "", fallback},
		{"only fences", "```json\n```", fallback},
		{"fenced object", "```json\n{\"a\":1}\n```", payload{A: 1}},
		{"wrong type", `{"a":"one"}`, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, JSON(quiet, tt.in, fallback))
			})
		})
	}
}

func TestJSON_MapResult(t *testing.T) {
	got := JSON(quiet, "```json\n{\"a\":1}\n```", map[string]any{})
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

const keywordSchema = `{
  "type": "object",
  "properties": {
    "keywords": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["keywords"]
}`

func TestValidated(t *testing.T) {
	schema, err := NewSchema(keywordSchema)
	require.NoError(t, err)

	type keywords struct {
		Keywords []string `json:"keywords"`
	}
	fallback := keywords{Keywords: []string{"fallback"}}

	tests := []struct {
		name string
		in   string
		want keywords
	}{
		{"conforming", `{"keywords":["Go","Rust"]}`, keywords{Keywords: []string{"Go", "Rust"}}},
		{"fenced conforming", "```json\n{\"keywords\":[]}\n```", keywords{Keywords: []string{}}},
		{"missing required key", `{"tags":["Go"]}`, fallback},
		{"wrong item type", `{"keywords":[1,2]}`, fallback},
		{"not an object", `["Go"]`, fallback},
		{"malformed", `{"keywords":`, fallback},
		{"empty", ``, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validated(quiet, tt.in, schema, fallback))
		})
	}
}

func TestNewSchema_Invalid(t *testing.T) {
	_, err := NewSchema(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustSchema(`not a schema`) })
}

func TestSchemaString(t *testing.T) {
	schema := MustSchema(keywordSchema)
	assert.Equal(t, keywordSchema, schema.String())
}
