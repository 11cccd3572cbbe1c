package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)

	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestGenerate_ToolCalls(t *testing.T) {
	var captured chatRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{
			"model": "llama3.2",
			"message": {"role": "assistant", "content": "",
				"tool_calls": [{"function": {"name": "search_knowledge_base", "arguments": {"query": "go"}}}]},
			"done": true,
			"done_reason": "stop",
			"prompt_eval_count": 40,
			"eval_count": 6
		}`))
	})

	temp := 0.0
	resp, err := svc.Generate(context.Background(), driven.GenerationRequest{
		System: "sys",
		Messages: []domain.Message{
			domain.UserText("find"),
			{Role: domain.RoleAssistant, Content: []domain.ContentBlock{
				domain.ToolUseBlock(domain.ToolCall{ID: "call_a", Name: "web_search", Input: map[string]any{"query": "x"}}),
			}},
			{Role: domain.RoleUser, Content: []domain.ContentBlock{domain.ToolResultBlock("call_a", `{"message":"none"}`)}},
		},
		Tools:       []domain.ToolDefinition{{Name: "search_knowledge_base", InputSchema: domain.ObjectSchema(nil)}},
		Temperature: &temp,
		MaxTokens:   100,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StopToolUse, resp.StopReason)
	assert.Equal(t, domain.Usage{InputTokens: 40, OutputTokens: 6}, resp.Usage)
	require.Len(t, resp.ToolCalls, 1)
	assert.True(t, strings.HasPrefix(resp.ToolCalls[0].ID, "call_"))
	assert.Equal(t, "search_knowledge_base", resp.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"query": "go"}, resp.ToolCalls[0].Input)

	assert.False(t, captured.Stream)
	require.NotNil(t, captured.Options)
	assert.Equal(t, 100, captured.Options.NumPredict)
	require.NotNil(t, captured.Options.Temperature)
	assert.InDelta(t, 0.0, *captured.Options.Temperature, 0)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "web_search", captured.Messages[2].ToolCalls[0].Function.Name)
	assert.Equal(t, "tool", captured.Messages[3].Role)
	assert.Equal(t, "web_search", captured.Messages[3].ToolName)
	require.Len(t, captured.Tools, 1)
}

func TestGenerate_StopReasons(t *testing.T) {
	tests := []struct {
		name       string
		doneReason string
		want       domain.StopReason
	}{
		{name: "stop", doneReason: "stop", want: domain.StopEndTurn},
		{name: "length", doneReason: "length", want: domain.StopMaxTokens},
		{name: "missing", doneReason: "", want: domain.StopEndTurn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true,"done_reason":"` + tt.doneReason + `"}`))
			})

			resp, err := svc.Generate(context.Background(), driven.GenerationRequest{Messages: []domain.Message{domain.UserText("x")}})

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StopReason)
			assert.Equal(t, "ok", resp.Text)
			assert.Equal(t, DefaultLLMModel, resp.Model)
		})
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	})

	_, err := svc.Generate(context.Background(), driven.GenerationRequest{Messages: []domain.Message{domain.UserText("x")}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
