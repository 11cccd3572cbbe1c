// Package openai provides an LLM service adapter using the OpenAI chat
// completions API with function calling.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ragent/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond paces Generate calls. Zero disables pacing.
	RequestsPerSecond float64
}

// LLMService provides generation using the OpenAI API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *ratelimit.Limiter
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature *float64            `json:"temperature,omitempty"`
	Tools       []functionTool      `json:"tools,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type functionTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string             `json:"name"`
		Description string             `json:"description"`
		Parameters  domain.InputSchema `json:"parameters"`
	} `json:"function"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatCompletionMsg `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		limiter: ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RequestsPerSecond}),
	}, nil
}

// Generate sends the conversation to /chat/completions.
// Tool results become "tool" role messages keyed by tool_call_id.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}

	messages, err := toChatMessages(req.System, req.Messages)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Tools:       toFunctionTools(req.Tools),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: rate limit wait: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	s.limiter.Observe(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(raw))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(raw))
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}

	return parseChoice(&chatResp, model)
}

func toChatMessages(system string, messages []domain.Message) ([]chatCompletionMsg, error) {
	var out []chatCompletionMsg
	if system != "" {
		out = append(out, chatCompletionMsg{Role: "system", Content: strPtr(system)})
	}

	for _, m := range messages {
		var calls []toolCall
		for _, b := range m.Content {
			switch b.Type {
			case domain.BlockToolResult:
				out = append(out, chatCompletionMsg{Role: "tool", ToolCallID: b.ToolUseID, Content: strPtr(b.Content)})
			case domain.BlockToolUse:
				args, err := json.Marshal(nonNil(b.Input))
				if err != nil {
					return nil, fmt.Errorf("marshal tool input for %s: %w", b.Name, err)
				}
				tc := toolCall{ID: b.ID, Type: "function"}
				tc.Function.Name = b.Name
				tc.Function.Arguments = string(args)
				calls = append(calls, tc)
			}
		}

		text := m.Text()
		if text == "" && len(calls) == 0 {
			continue
		}
		msg := chatCompletionMsg{Role: string(m.Role), ToolCalls: calls}
		if text != "" {
			msg.Content = strPtr(text)
		}
		out = append(out, msg)
	}
	return out, nil
}

func toFunctionTools(defs []domain.ToolDefinition) []functionTool {
	tools := make([]functionTool, 0, len(defs))
	for _, d := range defs {
		ft := functionTool{Type: "function"}
		ft.Function.Name = d.Name
		ft.Function.Description = d.Description
		ft.Function.Parameters = d.InputSchema
		tools = append(tools, ft)
	}
	return tools
}

func parseChoice(chatResp *chatCompletionResponse, requested string) (*driven.GenerationResponse, error) {
	choice := chatResp.Choices[0]
	out := &driven.GenerationResponse{
		StopReason: stopReason(choice.FinishReason),
		Usage: domain.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
		},
		Model: chatResp.Model,
	}
	if out.Model == "" {
		out.Model = requested
	}

	if choice.Message.Content != nil && *choice.Message.Content != "" {
		out.Text = *choice.Message.Content
		out.Content = append(out.Content, domain.TextBlock(out.Text))
	}
	for _, tc := range choice.Message.ToolCalls {
		input := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return nil, fmt.Errorf("decode arguments for %s: %w", tc.Function.Name, err)
			}
		}
		call := domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Input: input}
		out.ToolCalls = append(out.ToolCalls, call)
		out.Content = append(out.Content, domain.ToolUseBlock(call))
	}
	return out, nil
}

// stopReason maps OpenAI finish reasons onto the Anthropic vocabulary
// used across the domain.
func stopReason(finish string) domain.StopReason {
	switch finish {
	case "stop":
		return domain.StopEndTurn
	case "length":
		return domain.StopMaxTokens
	case "tool_calls", "function_call":
		return domain.StopToolUse
	default:
		return domain.StopReason(finish)
	}
}

func strPtr(s string) *string { return &s }

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
