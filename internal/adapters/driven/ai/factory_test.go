package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/adapters/driven/embedding/cached"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

// recordingHealth captures lifecycle transitions.
type recordingHealth struct {
	mu     sync.Mutex
	states map[string]domain.ComponentState
}

func newRecordingHealth() *recordingHealth {
	return &recordingHealth{states: make(map[string]domain.ComponentState)}
}

func (h *recordingHealth) MarkReady(name string)           { h.set(name, domain.StateReady) }
func (h *recordingHealth) MarkFailed(name string, _ error) { h.set(name, domain.StateFailed) }
func (h *recordingHealth) MarkDisabled(name string)        { h.set(name, domain.StateDisabled) }

func (h *recordingHealth) set(name string, state domain.ComponentState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[name] = state
}

// ollamaServer answers the ping endpoints of both Ollama adapters.
func ollamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" || r.URL.Path == "/api/show" {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInitResult_Close_NilServices(t *testing.T) {
	result := &InitResult{}
	result.Close()
}

func TestInitialise_NothingConfigured(t *testing.T) {
	settings := domain.DefaultAppSettings()
	health := newRecordingHealth()

	result := Initialise(context.Background(), &settings, health)
	defer result.Close()

	assert.NotNil(t, result.VectorIndex)
	assert.Nil(t, result.LLMService)
	assert.Nil(t, result.EmbeddingService)
	assert.Nil(t, result.Sandbox)
	assert.NotNil(t, result.WebSearcher)
	assert.Len(t, result.Warnings, 2)

	assert.Equal(t, map[string]domain.ComponentState{
		domain.ComponentVectorStore: domain.StateReady,
		domain.ComponentEmbedding:   domain.StateDisabled,
		domain.ComponentLLM:         domain.StateDisabled,
		domain.ComponentSandbox:     domain.StateDisabled,
	}, health.states)
}

func TestInitialise_OllamaReady(t *testing.T) {
	srv := ollamaServer(t, http.StatusOK)
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "llama3.2"}
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "nomic-embed-text"}
	settings.Sandbox.URL = "http://sandbox.invalid/execute"
	health := newRecordingHealth()

	result := Initialise(context.Background(), &settings, health)
	defer result.Close()

	require.NotNil(t, result.LLMService)
	require.NotNil(t, result.EmbeddingService)
	assert.IsType(t, &cached.EmbeddingService{}, result.EmbeddingService)
	assert.Equal(t, 768, result.EmbeddingService.Dimensions())
	assert.NotNil(t, result.Sandbox)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, domain.StateReady, health.states[domain.ComponentLLM])
	assert.Equal(t, domain.StateReady, health.states[domain.ComponentEmbedding])
	assert.Equal(t, domain.StateReady, health.states[domain.ComponentSandbox])
}

func TestInitialise_UnreachableProvider(t *testing.T) {
	srv := ollamaServer(t, http.StatusInternalServerError)
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}
	health := newRecordingHealth()

	result := Initialise(context.Background(), &settings, nil)
	defer result.Close()
	assert.Nil(t, result.LLMService)

	result = Initialise(context.Background(), &settings, health)
	defer result.Close()
	assert.Equal(t, domain.StateFailed, health.states[domain.ComponentLLM])
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "ragent settings llm")
}

func TestInitialise_VectorStoreFailure(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Vector = domain.VectorSettings{Backend: domain.VectorBackendQdrant}
	health := newRecordingHealth()

	result := Initialise(context.Background(), &settings, health)
	defer result.Close()

	assert.Nil(t, result.VectorIndex)
	assert.Equal(t, domain.StateFailed, health.states[domain.ComponentVectorStore])
}

func TestCreateVectorIndex(t *testing.T) {
	t.Run("empty backend is memory", func(t *testing.T) {
		idx, err := CreateVectorIndex(&domain.VectorSettings{})
		require.NoError(t, err)
		assert.IsType(t, &memory.VectorIndex{}, idx)
	})

	t.Run("sqlite", func(t *testing.T) {
		idx, err := CreateVectorIndex(&domain.VectorSettings{Backend: domain.VectorBackendSQLite, DataDir: t.TempDir()})
		require.NoError(t, err)
		defer idx.Close()
		assert.IsType(t, &sqlite.Store{}, idx)
	})

	t.Run("qdrant", func(t *testing.T) {
		idx, err := CreateVectorIndex(&domain.VectorSettings{Backend: domain.VectorBackendQdrant, QdrantURL: "http://localhost:6333"})
		require.NoError(t, err)
		assert.IsType(t, &qdrant.VectorIndex{}, idx)
	})

	t.Run("qdrant without url", func(t *testing.T) {
		_, err := CreateVectorIndex(&domain.VectorSettings{Backend: domain.VectorBackendQdrant})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := CreateVectorIndex(&domain.VectorSettings{Backend: "chroma"})
		assert.ErrorContains(t, err, "unsupported vector backend")
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		errContains string
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "unconfigured", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, wantNil: true},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: "http://localhost:11434", Model: "nomic-embed-text"},
		},
		{
			name:     "openai",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small"},
		},
		{name: "unknown provider", settings: &domain.EmbeddingSettings{Provider: "unknown", APIKey: "k"}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.errContains != "" {
				assert.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			svc.Close()
		})
	}
}

func TestCreateOllamaEmbedding_Dimensions(t *testing.T) {
	svc := createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "mxbai-embed-large"})
	assert.Equal(t, 1024, svc.Dimensions())

	svc = createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "custom"})
	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantModel string
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantNil: true},
		{
			name:      "anthropic",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantModel: domain.DefaultModel,
		},
		{
			name:      "openai",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o"},
			wantModel: "gpt-4o",
		},
		{
			name:      "ollama",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOllama},
			wantModel: "llama3.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateSandbox(t *testing.T) {
	sb, err := CreateSandbox(&domain.SandboxSettings{})
	require.NoError(t, err)
	assert.Nil(t, sb)

	sb, err = CreateSandbox(&domain.SandboxSettings{URL: "http://localhost:9090/execute", TimeoutMillis: 1000})
	require.NoError(t, err)
	assert.NotNil(t, sb)
}

func TestWithCache_FallsBackToMemory(t *testing.T) {
	inner := createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"})

	svc := WithCache(context.Background(), inner, &domain.CacheSettings{RedisAddr: "127.0.0.1:1"})

	assert.IsType(t, &cached.EmbeddingService{}, svc)
	assert.Equal(t, inner.ModelName(), svc.ModelName())
}
