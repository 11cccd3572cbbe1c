// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// LLMService generates model responses, optionally requesting tool calls.
// Each call carries the full conversation: backends keep no session state.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o)
//   - Ollama (local models)
type LLMService interface {
	// Generate runs one generation over the complete message history.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResponse, error)

	// ModelName returns the default model used when a request names none.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to mark the LLM component ready.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerationRequest is one call to the model.
type GenerationRequest struct {
	// Model overrides the service default when set.
	Model string

	// System is the system instruction.
	System string

	// Messages is the full conversation so far.
	Messages []domain.Message

	// Tools advertises callable tools. Empty disables tool use.
	Tools []domain.ToolDefinition

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness. Nil leaves the backend default.
	Temperature *float64
}

// GenerationResponse is the model's reply.
type GenerationResponse struct {
	// Text is the concatenated text content.
	Text string

	// Content holds the reply's text and tool_use blocks in original order.
	Content []domain.ContentBlock

	// ToolCalls lists requested tool invocations in the order issued.
	ToolCalls []domain.ToolCall

	// StopReason classifies why generation ended.
	StopReason domain.StopReason

	// Usage is the token usage of this call.
	Usage domain.Usage

	// Model is the model that served the call.
	Model string
}
