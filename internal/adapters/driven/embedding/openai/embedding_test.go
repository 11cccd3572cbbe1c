package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc, cfg Config) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

// echoVectors answers each input with a one-element vector of its length.
func echoVectors(t *testing.T, seen *[]int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*seen = append(*seen, len(req.Input))

		data := make([]string, len(req.Input))
		for i, in := range req.Input {
			// Reverse order to check reordering by index.
			j := len(req.Input) - 1 - i
			data[j] = fmt.Sprintf(`{"index":%d,"embedding":[%d]}`, i, len(in))
		}
		_, _ = fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(data, ","))
	}
}

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	tests := []struct {
		cfg  Config
		want int
	}{
		{Config{APIKey: "k"}, 1536},
		{Config{APIKey: "k", Model: "text-embedding-3-large"}, 3072},
		{Config{APIKey: "k", Model: "text-embedding-3-large", Dimensions: 256}, 256},
		{Config{APIKey: "k", Model: "my-compatible-model"}, DefaultDimensions},
	}
	for _, tt := range tests {
		svc, err := NewEmbeddingService(tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, svc.Dimensions(), tt.cfg.Model)
	}
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var seen []int
	svc := newTestService(t, echoVectors(t, &seen), Config{})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})

	require.NoError(t, err)
	assert.Equal(t, []int{3}, seen)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vecs)
}

func TestEmbedBatch_SplitsLargeBatches(t *testing.T) {
	var seen []int
	svc := newTestService(t, echoVectors(t, &seen), Config{BatchSize: 2})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, seen)
	assert.Equal(t, [][]float32{{1}, {2}, {3}, {4}, {5}}, vecs)
}

func TestEmbedBatch_ShortenedDimensions(t *testing.T) {
	var got embeddingRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}, Config{Model: "text-embedding-3-small", Dimensions: 512})

	_, err := svc.Embed(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, 512, got.Dimensions)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_MissingVector(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1],"index":0}]}`))
	}, Config{})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "input 1")
}

func TestEmbed_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
		auth        bool
		message     string
	}{
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key"}}`, false, true, "Incorrect API key"},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, true, false, "slow down"},
		{"server error", http.StatusBadGateway, "upstream down", true, false, "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Config{})

			_, err := svc.Embed(context.Background(), "a")

			require.Error(t, err)
			assert.ErrorContains(t, err, tt.message)
			assert.Equal(t, tt.unavailable, errors.Is(err, domain.ErrEmbeddingUnavailable))
			assert.Equal(t, tt.auth, IsAuthError(err))
		})
	}
}

func TestEmbed_Unreachable(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "a")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestPing_ChecksModel(t *testing.T) {
	var path string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.URL.Path != "/models/text-embedding-3-small" {
			w.WriteHeader(http.StatusNotFound)
		}
	}, Config{})

	require.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, "/models/text-embedding-3-small", path)
}
