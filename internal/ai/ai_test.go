package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claudeReply(text string) string {
	body, _ := json.Marshal(map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultClaudeModel,
		"content":       []map[string]any{{"type": "text", "text": text}},
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
	})
	return string(body)
}

func TestClaude_Generate(t *testing.T) {
	var gotBody map[string]any
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"), "path %s", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, claudeReply(`{"keywords":["Go"]}`))
	}))
	defer srv.Close()

	c := NewClaude(ClaudeConfig{APIKey: "test-key", BaseURL: srv.URL})
	out, err := c.Generate(context.Background(), Request{System: "be terse", Prompt: "extract"})

	require.NoError(t, err)
	assert.Equal(t, `{"keywords":["Go"]}`, out)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, DefaultClaudeModel, gotBody["model"])
	assert.EqualValues(t, DefaultClaudeMaxTokens, gotBody["max_tokens"])
	assert.NotNil(t, gotBody["system"])
}

func TestClaude_ErrorStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	defer srv.Close()

	c := NewClaude(ClaudeConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, 1, calls, "SDK retries must be disabled")
}

func TestOpenRouter_Chat(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Hi there!  "}}]}`)
	}))
	defer srv.Close()

	o := NewOpenRouter(OpenRouterConfig{APIKey: "or-key", BaseURL: srv.URL + "/"})
	reply, err := o.Chat(context.Background(), ChatRequest{
		Messages:    []ChatTurn{{Role: "system", Content: "sys"}, {Role: "user", Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   500,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hi there!", reply)
	assert.Equal(t, DefaultOpenRouterModel, got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
	assert.Len(t, got.Messages, 2)
}

func TestOpenRouter_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"non-200", http.StatusUnauthorized, `{"error":{"message":"No auth credentials found"}}`, "status 401"},
		{"error in 200 body", http.StatusOK, `{"error":{"message":"rate limited"}}`, "rate limited"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, "empty response"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "empty response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			o := NewOpenRouter(OpenRouterConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := o.Chat(context.Background(), ChatRequest{Messages: []ChatTurn{{Role: "user", Content: "hi"}}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
