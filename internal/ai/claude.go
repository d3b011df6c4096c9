package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultClaudeModel     = "claude-sonnet-4-20250514"
	DefaultClaudeMaxTokens = 4096
)

// ClaudeConfig configures the Anthropic Messages client.
// BaseURL is only set in tests and for API proxies.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
}

// Claude implements Model on top of the Anthropic Messages API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

var _ Model = (*Claude)(nil)

// NewClaude builds a client. The SDK's own retry loop is switched off so
// that retry.Do stays the only place attempts are counted.
func NewClaude(cfg ClaudeConfig) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultClaudeModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultClaudeMaxTokens
	}

	return &Claude{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate sends one user turn (plus optional system prompt) and returns
// the concatenated text blocks of the reply.
func (c *Claude) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("ai: claude returned status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("ai: claude request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("ai: claude returned no text content")
	}
	return sb.String(), nil
}
