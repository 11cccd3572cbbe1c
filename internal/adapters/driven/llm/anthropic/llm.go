// Package anthropic provides an LLM service adapter using the Anthropic
// Messages API with native tool use.
package anthropic

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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = domain.DefaultModel
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = domain.DefaultMaxTokens

	// AnthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the default model (default: domain.DefaultModel).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond paces Generate calls. Zero disables pacing.
	RequestsPerSecond float64
}

// LLMService provides generation using the Anthropic API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *ratelimit.Limiter
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	Tools       []toolSpec        `json:"tools,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock covers the text, tool_use and tool_result block shapes.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type toolSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema domain.InputSchema `json:"input_schema"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
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

// Generate sends the full conversation to /v1/messages.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	body, err := s.buildRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("anthropic: rate limit wait: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", s.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

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

	var msgResp messagesResponse
	if err := json.Unmarshal(raw, &msgResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(raw))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if msgResp.Error != nil {
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(raw))
	}

	return s.parseResponse(&msgResp, req.Model)
}

func (s *LLMService) buildRequest(req driven.GenerationRequest) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	msgs := make([]messagesMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		blocks := make([]contentBlock, 0, len(m.Content))
		for _, b := range m.Content {
			block, err := toWireBlock(b)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		}
		msgs = append(msgs, messagesMessage{Role: string(m.Role), Content: blocks})
	}

	tools := make([]toolSpec, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, toolSpec(t))
	}

	body, err := json.Marshal(messagesRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return body, nil
}

func toWireBlock(b domain.ContentBlock) (contentBlock, error) {
	switch b.Type {
	case domain.BlockToolUse:
		input := b.Input
		if input == nil {
			input = map[string]any{}
		}
		raw, err := json.Marshal(input)
		if err != nil {
			return contentBlock{}, fmt.Errorf("marshal tool input for %s: %w", b.Name, err)
		}
		return contentBlock{Type: string(b.Type), ID: b.ID, Name: b.Name, Input: raw}, nil
	case domain.BlockToolResult:
		return contentBlock{Type: string(b.Type), ToolUseID: b.ToolUseID, Content: b.Content}, nil
	default:
		return contentBlock{Type: string(domain.BlockText), Text: b.Text}, nil
	}
}

func (s *LLMService) parseResponse(msgResp *messagesResponse, requested string) (*driven.GenerationResponse, error) {
	out := &driven.GenerationResponse{
		StopReason: domain.StopReason(msgResp.StopReason),
		Usage: domain.Usage{
			InputTokens:  msgResp.Usage.InputTokens,
			OutputTokens: msgResp.Usage.OutputTokens,
		},
		Model: msgResp.Model,
	}
	if out.Model == "" {
		out.Model = requested
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		switch block.Type {
		case string(domain.BlockText):
			text.WriteString(block.Text)
			out.Content = append(out.Content, domain.TextBlock(block.Text))
		case string(domain.BlockToolUse):
			input := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					return nil, fmt.Errorf("decode tool input for %s: %w", block.Name, err)
				}
			}
			call := domain.ToolCall{ID: block.ID, Name: block.Name, Input: input}
			out.ToolCalls = append(out.ToolCalls, call)
			out.Content = append(out.Content, domain.ToolUseBlock(call))
		}
	}
	out.Text = text.String()
	return out, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
