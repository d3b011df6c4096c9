package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "kwaipilot/kat-coder-pro:free"
)

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Referer and Title are optional attribution headers.
	Referer string
	Title   string
}

// OpenRouter is a chat-completions client for the OpenRouter API.
type OpenRouter struct {
	cfg        OpenRouterConfig
	httpClient *http.Client
}

var _ Chatter = (*OpenRouter)(nil)

func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenRouterModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenRouter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model       string     `json:"model"`
	Messages    []ChatTurn `json:"messages"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
}

// Chat posts the transcript and returns the first choice's trimmed content.
// An empty reply is an error.
func (o *OpenRouter) Chat(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       o.cfg.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshalling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	if o.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", o.cfg.Referer)
	}
	if o.cfg.Title != "" {
		httpReq.Header.Set("X-Title", o.cfg.Title)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ai: calling openrouter: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ai: reading openrouter response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		return "", fmt.Errorf("ai: openrouter returned status %d: %s", resp.StatusCode, msg)
	}

	// OpenRouter reports some failures inside a 200 body.
	if e := gjson.GetBytes(raw, "error.message"); e.Exists() {
		return "", fmt.Errorf("ai: openrouter error: %s", e.String())
	}

	reply := strings.TrimSpace(gjson.GetBytes(raw, "choices.0.message.content").String())
	if reply == "" {
		return "", errors.New("ai: empty response from chat model")
	}
	return reply, nil
}
