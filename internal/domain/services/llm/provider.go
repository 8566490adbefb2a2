package llm

import (
	"context"
)

// Provider defines the interface all text-completion providers implement.
// The abstraction keeps the annotation engine and the chat flow
// independent of any single vendor SDK.
type Provider interface {
	// Complete issues a single non-streaming completion request.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "anthropic", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// Message is a single conversation entry. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// CompletionRequest contains the parameters for a completion call.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "claude-haiku-4-5-20251001")
	Model string

	// System is the system prompt, empty when unused.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// MaxTokens caps the response length. Providers substitute their own
	// default when zero.
	MaxTokens int

	// Temperature is optional; nil leaves the provider default.
	Temperature *float64
}

// CompletionResponse contains the provider's reply.
type CompletionResponse struct {
	// Text is the concatenated assistant text output.
	Text string

	// Model is the model that served the request.
	Model string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn")
	StopReason string
}
