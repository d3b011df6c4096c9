// Package ai contains the outbound clients for the two generative services:
// the structured-output model used by profile generation (Claude) and the
// conversational model behind the chat assistant (OpenRouter).
//
// Both are consumed as opaque request/response services. Retries and
// timeouts are NOT handled here; the callers wrap every call in retry.Do.
package ai

import "context"

// Request is one single-turn generation call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int64
}

// Model is a text-in, text-out generative model.
//
// The service layer depends on this interface, never on the SDK, so tests
// can substitute a scripted model.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ChatTurn is one message of a chat transcript in the wire roles the chat
// service expects: "system", "user" or "assistant".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a multi-turn chat completion.
type ChatRequest struct {
	Messages    []ChatTurn
	Temperature float64
	MaxTokens   int
}

// Chatter completes a chat transcript.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
