package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAGAnswer_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		sources []SearchResult
		want    string
	}{
		{
			name: "not requested",
			want: `{"answer":"a","usage":{"input_tokens":1,"output_tokens":2},"model":"m"}`,
		},
		{
			name:    "requested but empty",
			sources: []SearchResult{},
			want:    `{"answer":"a","sources":[],"usage":{"input_tokens":1,"output_tokens":2},"model":"m"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := RAGAnswer{
				Answer:  "a",
				Sources: tt.sources,
				Usage:   Usage{InputTokens: 1, OutputTokens: 2},
				Model:   "m",
			}

			data, err := json.Marshal(answer)

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestRAGAnswer_MarshalJSONWithSources(t *testing.T) {
	answer := &RAGAnswer{Answer: "a", Sources: []SearchResult{{Content: "c", Score: 0.5}}}

	data, err := json.Marshal(answer)
	require.NoError(t, err)

	var decoded RAGAnswer
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Sources, 1)
	assert.Equal(t, "c", decoded.Sources[0].Content)
}
