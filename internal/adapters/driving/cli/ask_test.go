package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func TestAskCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "ask", "how", "long", "for", "refunds?", "--kb", "support", "-k", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "The refund window is 30 days.")
	assert.Contains(t, out, "[1] policy.md (0.87)")
	assert.Contains(t, out, "test-model | 50 in / 12 out tokens")
	assert.Equal(t, "how long for refunds?", ts.rag.got.Query)
	assert.Equal(t, "support", ts.rag.got.KnowledgeBaseID)
	assert.Equal(t, 3, ts.rag.got.TopK)
	require.NotNil(t, ts.rag.got.IncludeSources)
	assert.True(t, *ts.rag.got.IncludeSources)
	assert.InDelta(t, domain.DefaultRAGTemperature, *ts.rag.got.Temperature, 1e-9)
}

func TestAskCmd_NoSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "ask", "q", "--no-sources")

	require.NoError(t, err)
	assert.False(t, *ts.rag.got.IncludeSources)
}

func TestAskCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "ask", "q", "--json")

	require.NoError(t, err)
	var answer domain.RAGAnswer
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, "test-model", answer.Model)
	assert.Len(t, answer.Sources, 1)
}

func TestAskCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.rag.err = errors.New("llm down")

	_, err := runCommand(t, "ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	ragService = nil

	_, err := runCommand(t, "ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAG service not configured")
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "policy.md", sourceLabel(testResult()))
	assert.Equal(t, "doc-1", sourceLabel(domain.SearchResult{Metadata: map[string]any{domain.MetaDocumentID: "doc-1"}}))
	assert.Equal(t, "unknown", sourceLabel(domain.SearchResult{}))
}
