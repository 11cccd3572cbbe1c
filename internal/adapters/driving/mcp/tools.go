package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// Names of the tools served in addition to the registry.
const (
	ToolRAGQuery     = "rag_query"
	ToolAgentExecute = "agent_execute"
)

// RAGQueryInput is the input schema for the rag_query tool.
type RAGQueryInput struct {
	Query           string `json:"query" jsonschema:"the question to answer from the knowledge base"`
	KnowledgeBaseID string `json:"knowledge_base_id,omitempty" jsonschema:"knowledge base to search (default: default)"`
	TopK            int    `json:"top_k,omitempty" jsonschema:"number of passages to retrieve (1-20, default 5)"`
}

// RAGQueryOutput is the output schema for the rag_query tool.
type RAGQueryOutput struct {
	Answer  string         `json:"answer"`
	Model   string         `json:"model"`
	Sources []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is one retrieved passage backing an answer.
type SourceOutput struct {
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// AgentExecuteInput is the input schema for the agent_execute tool.
type AgentExecuteInput struct {
	Task            string   `json:"task" jsonschema:"the task for the agent to complete"`
	KnowledgeBaseID string   `json:"knowledge_base_id,omitempty" jsonschema:"knowledge base the search tool uses"`
	MaxIterations   int      `json:"max_iterations,omitempty" jsonschema:"maximum tool-use rounds (1-20, default 5)"`
	Tools           []string `json:"tools,omitempty" jsonschema:"restrict the agent to these tools"`
}

// AgentExecuteOutput is the output schema for the agent_execute tool.
type AgentExecuteOutput struct {
	Result     string `json:"result"`
	Success    bool   `json:"success"`
	Iterations int    `json:"iterations"`
	ToolCalls  int    `json:"tool_calls"`
}

// registerTools registers the registry tools and, when their services are
// present, rag_query and agent_execute.
func (s *Server) registerTools() {
	for _, def := range s.ports.Tools.ListTools() {
		s.server.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: toJSONSchema(def.InputSchema),
		}, s.registryHandler(def.Name))
	}

	if s.ports.RAG != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolRAGQuery,
			Description: "Answer a question using passages retrieved from a knowledge base",
		}, s.handleRAGQuery)
	}
	if s.ports.Agent != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolAgentExecute,
			Description: "Run a multi-step task with the tool-using agent",
		}, s.handleAgentExecute)
	}
}

// registryHandler dispatches a call to the named registry tool. Tool
// failures come back as an error result rather than a protocol error.
func (s *Server) registryHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
		}

		result := s.ports.Tools.Invoke(ctx, name, params, domain.DefaultKnowledgeBase)
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s result: %w", name, err)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
			IsError: domain.IsToolError(result),
		}, nil
	}
}

func (s *Server) handleRAGQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RAGQueryInput,
) (*mcp.CallToolResult, RAGQueryOutput, error) {
	answer, err := s.ports.RAG.Query(ctx, domain.RAGQuery{
		Query:           input.Query,
		KnowledgeBaseID: input.KnowledgeBaseID,
		TopK:            input.TopK,
	})
	if err != nil {
		return nil, RAGQueryOutput{}, err
	}

	output := RAGQueryOutput{
		Answer:  answer.Answer,
		Model:   answer.Model,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		name, _ := src.Source()
		output.Sources[i] = SourceOutput{
			Source:  name,
			Score:   src.Score,
			Content: src.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAgentExecute(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AgentExecuteInput,
) (*mcp.CallToolResult, AgentExecuteOutput, error) {
	result, err := s.ports.Agent.Execute(ctx, domain.TaskRequest{
		Task:            input.Task,
		KnowledgeBaseID: input.KnowledgeBaseID,
		MaxIterations:   input.MaxIterations,
		Tools:           input.Tools,
	})
	if err != nil {
		return nil, AgentExecuteOutput{}, err
	}

	calls := 0
	for _, step := range result.Steps {
		calls += len(step.ToolUses)
	}
	return nil, AgentExecuteOutput{
		Result:     result.Result,
		Success:    result.Success,
		Iterations: len(result.Steps),
		ToolCalls:  calls,
	}, nil
}

// toJSONSchema converts a tool's parameter contract to a JSON schema.
func toJSONSchema(in domain.InputSchema) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(in.Properties)),
		Required:   in.Required,
	}
	for name, prop := range in.Properties {
		p := &jsonschema.Schema{Type: prop.Type, Description: prop.Description}
		if prop.Default != nil {
			if raw, err := json.Marshal(prop.Default); err == nil {
				p.Default = raw
			}
		}
		out.Properties[name] = p
	}
	return out
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
