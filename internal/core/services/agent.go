package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.AgentService = (*AgentService)(nil)

// AgentService drives a bounded tool-use conversation with the model.
//
// Every iteration resends the whole conversation. A reply without tool
// calls ends the task. A reply with tool calls is answered with their
// results and always gets a further round, whatever stop reason it
// declared, until the iteration budget runs out.
type AgentService struct {
	llm     driven.LLMService
	tools   driving.ToolService
	prompts driven.PromptStore
	health  *HealthService
}

// NewAgentService creates an agent service.
// prompts and health may be nil.
func NewAgentService(
	llm driven.LLMService,
	tools driving.ToolService,
	prompts driven.PromptStore,
	health *HealthService,
) *AgentService {
	return &AgentService{
		llm:     llm,
		tools:   tools,
		prompts: prompts,
		health:  health,
	}
}

// Execute runs the agent loop for one task.
func (s *AgentService) Execute(ctx context.Context, req domain.TaskRequest) (*domain.TaskResult, error) {
	if err := req.Normalise(); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if err := s.health.Check(domain.ComponentLLM); err != nil {
		return nil, err
	}

	logger.Section("Agent Task")
	logger.Debug("Task: %q, model=%s, max_iterations=%d, kb=%q",
		req.Task, req.Model, req.MaxIterations, req.KnowledgeBaseID)

	system := loadPrompt(s.prompts, driven.PromptAgentSystem)
	var defs []domain.ToolDefinition
	if s.tools != nil {
		defs = s.tools.Definitions(req.Tools)
	}
	// Calls are dispatched only for the tools the model was offered.
	offered := make(map[string]bool, len(defs))
	for _, def := range defs {
		offered[def.Name] = true
	}

	messages := []domain.Message{domain.UserText(req.Task)}
	steps := make([]domain.Step, 0, req.MaxIterations)
	var usage domain.Usage
	var last *driven.GenerationResponse

	for iteration := 1; iteration <= req.MaxIterations; iteration++ {
		resp, err := s.llm.Generate(ctx, driven.GenerationRequest{
			Model:     req.Model,
			System:    system,
			Messages:  messages,
			Tools:     defs,
			MaxTokens: req.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: iteration %d: %w", domain.ErrGenerationUnavailable, iteration, err)
		}
		if resp == nil {
			return nil, fmt.Errorf("%w: iteration %d: empty response", domain.ErrGenerationUnavailable, iteration)
		}

		last = resp
		usage = usage.Add(resp.Usage)
		step := domain.Step{
			Iteration: iteration,
			Thought:   resp.Text,
			ToolUses:  []domain.ToolUse{},
		}

		logger.Debug("Iteration %d: stop=%s, tool_calls=%d, usage=%d/%d",
			iteration, resp.StopReason, len(resp.ToolCalls), resp.Usage.InputTokens, resp.Usage.OutputTokens)

		if len(resp.ToolCalls) == 0 {
			steps = append(steps, step)
			break
		}

		results := make([]domain.ContentBlock, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			input := call.Input
			if input == nil {
				input = map[string]any{}
			}

			var out map[string]any
			if s.tools == nil || !offered[call.Name] {
				out = domain.ToolError("Unknown tool: " + call.Name)
			} else {
				out = s.tools.Invoke(ctx, call.Name, input, req.KnowledgeBaseID)
			}
			logger.Debug("Tool %s(%v) -> error=%t", call.Name, input, domain.IsToolError(out))

			step.ToolUses = append(step.ToolUses, domain.ToolUse{
				Tool:   call.Name,
				Input:  input,
				Result: out,
			})
			results = append(results, domain.ToolResultBlock(call.ID, encodeToolResult(out)))
		}

		messages = append(messages,
			domain.Message{Role: domain.RoleAssistant, Content: assistantContent(resp)},
			domain.Message{Role: domain.RoleUser, Content: results},
		)
		steps = append(steps, step)
	}

	// Budget exhaustion leaves the last reply still asking for tools.
	success := len(last.ToolCalls) == 0 && last.StopReason.IsNaturalCompletion()
	logger.Info("Agent finished after %d iterations, success=%t", len(steps), success)

	return &domain.TaskResult{
		Result:  last.Text,
		Steps:   steps,
		Usage:   usage,
		Success: success,
	}, nil
}

// assistantContent reproduces the model's reply blocks in their original
// order. Backends that do not report blocks get text then tool calls.
func assistantContent(resp *driven.GenerationResponse) []domain.ContentBlock {
	if len(resp.Content) > 0 {
		blocks := make([]domain.ContentBlock, len(resp.Content))
		copy(blocks, resp.Content)
		return blocks
	}
	blocks := make([]domain.ContentBlock, 0, len(resp.ToolCalls)+1)
	if resp.Text != "" {
		blocks = append(blocks, domain.TextBlock(resp.Text))
	}
	for _, call := range resp.ToolCalls {
		blocks = append(blocks, domain.ToolUseBlock(call))
	}
	return blocks
}

// encodeToolResult serialises a tool result for a tool_result block.
func encodeToolResult(result map[string]any) string {
	data, err := json.Marshal(result)
	if err != nil {
		data, _ = json.Marshal(domain.ToolError(fmt.Sprintf("unserialisable tool result: %v", err)))
	}
	return string(data)
}

// loadPrompt returns the named prompt from store, falling back to the
// built-in default when the store is nil or fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	return driven.DefaultPrompts()[name]
}
