// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/ragent/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond paces Generate calls. Zero disables pacing.
	RequestsPerSecond float64
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
	limiter *ratelimit.Limiter
}

// options holds generation parameters.
type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
}

// chatToolCall carries arguments as an object, unlike OpenAI's string form.
type chatToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type chatTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string             `json:"name"`
		Description string             `json:"description"`
		Parameters  domain.InputSchema `json:"parameters"`
	} `json:"function"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	DoneReason      string      `json:"done_reason"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
	Error           string      `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
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
		model:   cfg.Model,
		limiter: ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RequestsPerSecond}),
	}, nil
}

// Generate sends the conversation to /api/chat without streaming.
// Ollama does not identify tool calls, so IDs are synthesized here and
// results are sent back by tool name.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}

	chatReq := chatRequest{
		Model:    model,
		Messages: toChatMessages(req.System, req.Messages),
		Tools:    toChatTools(req.Tools),
		Stream:   false,
	}
	if req.MaxTokens > 0 || req.Temperature != nil {
		chatReq.Options = &options{NumPredict: req.MaxTokens, Temperature: req.Temperature}
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ollama: rate limit wait: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	s.limiter.Observe(resp)

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read body: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", chatResp.Error)
	}

	return parseChat(&chatResp, model), nil
}

func toChatMessages(system string, messages []domain.Message) []chatMessage {
	var out []chatMessage
	if system != "" {
		out = append(out, chatMessage{Role: "system", Content: system})
	}

	// Tool results name the tool they answer.
	names := make(map[string]string)
	for _, m := range messages {
		var calls []chatToolCall
		for _, b := range m.Content {
			switch b.Type {
			case domain.BlockToolUse:
				names[b.ID] = b.Name
				var tc chatToolCall
				tc.Function.Name = b.Name
				tc.Function.Arguments = b.Input
				if tc.Function.Arguments == nil {
					tc.Function.Arguments = map[string]any{}
				}
				calls = append(calls, tc)
			case domain.BlockToolResult:
				out = append(out, chatMessage{Role: "tool", Content: b.Content, ToolName: names[b.ToolUseID]})
			}
		}

		text := m.Text()
		if text == "" && len(calls) == 0 {
			continue
		}
		out = append(out, chatMessage{Role: string(m.Role), Content: text, ToolCalls: calls})
	}
	return out
}

func toChatTools(defs []domain.ToolDefinition) []chatTool {
	tools := make([]chatTool, 0, len(defs))
	for _, d := range defs {
		ct := chatTool{Type: "function"}
		ct.Function.Name = d.Name
		ct.Function.Description = d.Description
		ct.Function.Parameters = d.InputSchema
		tools = append(tools, ct)
	}
	return tools
}

func parseChat(chatResp *chatResponse, requested string) *driven.GenerationResponse {
	out := &driven.GenerationResponse{
		Usage: domain.Usage{
			InputTokens:  chatResp.PromptEvalCount,
			OutputTokens: chatResp.EvalCount,
		},
		Model: chatResp.Model,
	}
	if out.Model == "" {
		out.Model = requested
	}

	if chatResp.Message.Content != "" {
		out.Text = chatResp.Message.Content
		out.Content = append(out.Content, domain.TextBlock(out.Text))
	}
	for _, tc := range chatResp.Message.ToolCalls {
		input := tc.Function.Arguments
		if input == nil {
			input = map[string]any{}
		}
		call := domain.ToolCall{ID: "call_" + ulid.Make().String(), Name: tc.Function.Name, Input: input}
		out.ToolCalls = append(out.ToolCalls, call)
		out.Content = append(out.Content, domain.ToolUseBlock(call))
	}

	switch {
	case len(out.ToolCalls) > 0:
		out.StopReason = domain.StopToolUse
	case chatResp.DoneReason == "length":
		out.StopReason = domain.StopMaxTokens
	default:
		out.StopReason = domain.StopEndTurn
	}
	return out
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that doesn't require running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: ping returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
