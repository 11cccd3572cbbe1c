package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// mockWebSearcher implements driven.WebSearcher for testing.
type mockWebSearcher struct{}

func (mockWebSearcher) Search(_ context.Context, query string) (map[string]any, error) {
	return map[string]any{"message": "Web search not implemented yet", "query": query}, nil
}

func newTestTools(t *testing.T, sandbox driven.CodeSandbox) (*ToolService, *RetrieverService) {
	t.Helper()
	r, _, _ := newTestRetriever()
	tools, err := NewBuiltinToolService(BuiltinToolDeps{
		Retriever:      r,
		Sandbox:        sandbox,
		SandboxTimeout: 5 * time.Second,
		WebSearcher:    mockWebSearcher{},
	})
	require.NoError(t, err)
	return tools, r
}

func TestToolService_ListTools(t *testing.T) {
	tools, _ := newTestTools(t, nil)

	defs := tools.ListTools()

	require.Len(t, defs, 3)
	assert.Equal(t, domain.ToolPythonREPL, defs[0].Name)
	assert.Equal(t, domain.ToolSearchKnowledgeBase, defs[1].Name)
	assert.Equal(t, domain.ToolWebSearch, defs[2].Name)

	search := defs[1]
	assert.Equal(t, []string{"query"}, search.InputSchema.Required)
	assert.Equal(t, "integer", search.InputSchema.Properties["top_k"].Type)
	assert.Equal(t, domain.DefaultTopK, search.InputSchema.Properties["top_k"].Default)
}

func TestToolService_Definitions(t *testing.T) {
	tools, _ := newTestTools(t, nil)

	defs := tools.Definitions([]string{domain.ToolWebSearch, "nope", domain.ToolWebSearch})
	require.Len(t, defs, 1)
	assert.Equal(t, domain.ToolWebSearch, defs[0].Name)

	assert.Len(t, tools.Definitions(nil), 3)
}

func TestToolService_UnknownTool(t *testing.T) {
	tools, _ := newTestTools(t, nil)

	result := tools.Invoke(context.Background(), "delete_everything", map[string]any{}, "")

	assert.Equal(t, map[string]any{"error": "Unknown tool: delete_everything"}, result)
}

func TestToolService_InvalidParameters(t *testing.T) {
	tools, _ := newTestTools(t, nil)

	t.Run("missing required", func(t *testing.T) {
		result := tools.Invoke(context.Background(), domain.ToolSearchKnowledgeBase, nil, "")
		require.True(t, domain.IsToolError(result))
		assert.Contains(t, result["error"], "Invalid parameters for search_knowledge_base")
	})

	t.Run("wrong type", func(t *testing.T) {
		result := tools.Invoke(context.Background(), domain.ToolSearchKnowledgeBase,
			map[string]any{"query": "x", "top_k": "five"}, "")
		assert.True(t, domain.IsToolError(result))
	})

	t.Run("fractional integer", func(t *testing.T) {
		result := tools.Invoke(context.Background(), domain.ToolSearchKnowledgeBase,
			map[string]any{"query": "x", "top_k": 2.5}, "")
		assert.True(t, domain.IsToolError(result))
	})
}

func TestToolService_SearchKnowledgeBase(t *testing.T) {
	tools, r := newTestTools(t, nil)
	ctx := context.Background()
	_, err := r.Upsert(ctx, "kb1", []domain.Chunk{
		{Text: "Python is great", Metadata: map[string]any{"source": "py.md"}},
		{Text: "Tea is hot"},
	}, nil)
	require.NoError(t, err)

	t.Run("uses default knowledge base", func(t *testing.T) {
		result := tools.Invoke(ctx, domain.ToolSearchKnowledgeBase,
			map[string]any{"query": "python", "top_k": float64(1)}, "kb1")

		require.False(t, domain.IsToolError(result), "%v", result)
		results, ok := result["results"].([]any)
		require.True(t, ok)
		require.Len(t, results, 1)
		hit := results[0].(map[string]any)
		assert.Equal(t, "Python is great", hit["content"])
		assert.Equal(t, "py.md", hit["metadata"].(map[string]any)["source"])
		assert.InDelta(t, 1.0, hit["score"], 1e-6)
	})

	t.Run("explicit knowledge base wins", func(t *testing.T) {
		result := tools.Invoke(ctx, domain.ToolSearchKnowledgeBase,
			map[string]any{"query": "python", "knowledge_base_id": "other"}, "kb1")

		require.False(t, domain.IsToolError(result))
		assert.Empty(t, result["results"])
	})

	t.Run("out of range top_k", func(t *testing.T) {
		result := tools.Invoke(ctx, domain.ToolSearchKnowledgeBase,
			map[string]any{"query": "python", "top_k": float64(50)}, "kb1")

		assert.True(t, domain.IsToolError(result))
	})
}

func TestToolService_PythonREPL(t *testing.T) {
	t.Run("value result", func(t *testing.T) {
		sandbox := &mockSandbox{result: &driven.SandboxResult{Value: 4}}
		tools, _ := newTestTools(t, sandbox)

		result := tools.Invoke(context.Background(), domain.ToolPythonREPL, map[string]any{"code": "result = 2 + 2"}, "")

		assert.Equal(t, map[string]any{"output": "4"}, result)
		assert.Equal(t, "python", sandbox.last.Language)
		assert.Equal(t, "result = 2 + 2", sandbox.last.Code)
		assert.Equal(t, 5*time.Second, sandbox.last.Timeout)
	})

	t.Run("stdout and stderr", func(t *testing.T) {
		sandbox := &mockSandbox{result: &driven.SandboxResult{Stdout: "hello\n", Stderr: "warning"}}
		tools, _ := newTestTools(t, sandbox)

		result := tools.Invoke(context.Background(), domain.ToolPythonREPL, map[string]any{"code": "print('hello')"}, "")

		assert.Equal(t, "hello", result["output"])
		assert.Equal(t, "warning", result["stderr"])
	})

	t.Run("no output", func(t *testing.T) {
		tools, _ := newTestTools(t, &mockSandbox{result: &driven.SandboxResult{}})

		result := tools.Invoke(context.Background(), domain.ToolPythonREPL, map[string]any{"code": "x = 1"}, "")

		assert.Equal(t, "Code executed successfully", result["output"])
	})

	t.Run("execution error", func(t *testing.T) {
		tools, _ := newTestTools(t, &mockSandbox{err: errors.New("NameError: name 'y' is not defined")})

		result := tools.Invoke(context.Background(), domain.ToolPythonREPL, map[string]any{"code": "y"}, "")

		assert.Equal(t, map[string]any{"error": "NameError: name 'y' is not defined"}, result)
	})

	t.Run("no sandbox", func(t *testing.T) {
		tools, _ := newTestTools(t, nil)

		result := tools.Invoke(context.Background(), domain.ToolPythonREPL, map[string]any{"code": "1"}, "")

		assert.Equal(t, map[string]any{"error": "code sandbox not configured"}, result)
	})
}

func TestToolService_WebSearch(t *testing.T) {
	tools, _ := newTestTools(t, nil)

	result := tools.Invoke(context.Background(), domain.ToolWebSearch, map[string]any{"query": "weather"}, "")

	assert.Equal(t, "Web search not implemented yet", result["message"])
	assert.Equal(t, "weather", result["query"])
}

func TestToolService_Register(t *testing.T) {
	tools := NewToolService()

	err := tools.Register(domain.ToolDefinition{Name: ""}, func(context.Context, map[string]any, string) (map[string]any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = tools.Register(domain.ToolDefinition{Name: "noop", InputSchema: domain.ObjectSchema(nil)}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = tools.Register(domain.ToolDefinition{Name: "noop", InputSchema: domain.ObjectSchema(nil)},
		func(context.Context, map[string]any, string) (map[string]any, error) { return nil, nil })
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, tools.Invoke(context.Background(), "noop", nil, ""))
}
