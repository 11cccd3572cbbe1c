package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasTopKFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "search", "refunds", "-k", "2", "--kb", "support", "--filter", "type=md", "--filter", "chunk_index=0")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] policy.md (0.87)")
	assert.Contains(t, out, "Refunds are accepted")
	assert.Equal(t, domain.SearchRequest{
		Query:           "refunds",
		KnowledgeBaseID: "support",
		TopK:            2,
		Filter:          domain.Filter{"type": "md", "chunk_index": 0.0},
	}, ts.retriever.got)
}

func TestSearchCmd_YAML(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "search", "refunds", "--format", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "query: refunds")
	assert.Contains(t, out, "total: 1")
	assert.Contains(t, out, "source: policy.md")
}

func TestParseFilter(t *testing.T) {
	assert.Nil(t, parseFilter(nil))
	assert.Equal(t,
		domain.Filter{"a": "x", "b": 2.0, "c": true},
		parseFilter(map[string]string{"a": "x", "b": "2", "c": "true"}))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t c", 10))
	assert.Equal(t, "abc...", snippet("abcdef", 3))
}
