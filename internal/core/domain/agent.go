package domain

import (
	"fmt"
	"strings"
)

// Agent task defaults and bounds.
const (
	DefaultModel         = "claude-3-5-sonnet-20241022"
	DefaultMaxIterations = 5
	MinMaxIterations     = 1
	MaxMaxIterations     = 20
	DefaultMaxTokens     = 4096
)

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType discriminates ContentBlock variants.
type BlockType string

// Content block variants.
const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one of text, tool_use or tool_result.
// Only the fields of the active variant are set.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// Text is set for BlockText.
	Text string `json:"text,omitempty"`

	// ID, Name and Input are set for BlockToolUse.
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// ToolUseID and Content are set for BlockToolResult.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolUseBlock builds a tool_use content block from a call.
func ToolUseBlock(call ToolCall) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ID: call.ID, Name: call.Name, Input: call.Input}
}

// ToolResultBlock builds a tool_result content block.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content}
}

// Message is one conversation turn.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// UserText builds a user message holding a single text block.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// Text concatenates the message's text blocks.
func (m Message) Text() string {
	var parts []string
	for _, b := range m.Content {
		if b.Type == BlockText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// StopReason classifies why a generation ended.
type StopReason string

// Stop reasons reported by generation backends.
const (
	StopEndTurn   StopReason = "end_turn"
	StopSequence  StopReason = "stop_sequence"
	StopMaxTokens StopReason = "max_tokens"
	StopToolUse   StopReason = "tool_use"
)

// IsNaturalCompletion reports whether the model finished on its own.
func (r StopReason) IsNaturalCompletion() bool {
	return r == StopEndTurn || r == StopSequence
}

// Usage counts tokens consumed by generation calls.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add returns the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// ToolUse records one tool invocation within a step.
type ToolUse struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input"`
	Result map[string]any `json:"result"`
}

// Step is the audit record of one agent iteration.
type Step struct {
	Iteration int       `json:"iteration"`
	Thought   string    `json:"thought"`
	ToolUses  []ToolUse `json:"tool_uses"`
}

// TaskRequest asks the agent to complete a task.
type TaskRequest struct {
	Task            string   `json:"task"`
	Model           string   `json:"model,omitempty"`
	MaxIterations   int      `json:"max_iterations,omitempty"`
	KnowledgeBaseID string   `json:"knowledge_base_id,omitempty"`
	Tools           []string `json:"tools,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty"`
}

// Normalise applies defaults and validates the request.
func (r *TaskRequest) Normalise() error {
	if strings.TrimSpace(r.Task) == "" {
		return fmt.Errorf("%w: task is required", ErrInvalidInput)
	}
	if r.Model == "" {
		r.Model = DefaultModel
	}
	if r.MaxIterations == 0 {
		r.MaxIterations = DefaultMaxIterations
	}
	if r.MaxIterations < MinMaxIterations || r.MaxIterations > MaxMaxIterations {
		return fmt.Errorf("%w: max_iterations must be between %d and %d, got %d",
			ErrInvalidInput, MinMaxIterations, MaxMaxIterations, r.MaxIterations)
	}
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	return nil
}

// TaskResult is the outcome of an agent task.
type TaskResult struct {
	Result  string `json:"result"`
	Steps   []Step `json:"steps"`
	Usage   Usage  `json:"usage"`
	Success bool   `json:"success"`
}
