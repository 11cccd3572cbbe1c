// Package ai builds the process-wide driven services from settings: the
// LLM, the embedding service with its cache, the vector index, the code
// sandbox and the web searcher. Each is pinged once and its outcome is
// recorded in the ready lifecycle.
package ai

import (
	"context"
	"fmt"
	"time"

	memorycache "github.com/custodia-labs/ragent/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/ragent/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/ragent/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/custodia-labs/ragent/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragent/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ragent/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/ragent/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragent/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragent/internal/adapters/driven/sandbox/remote"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragent/internal/adapters/driven/websearch"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// HealthRecorder receives ready lifecycle transitions.
type HealthRecorder interface {
	MarkReady(name string)
	MarkFailed(name string, err error)
	MarkDisabled(name string)
}

// InitResult contains the services built at startup.
// Fields are nil when the component is disabled or failed.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	Sandbox          driven.CodeSandbox
	WebSearcher      driven.WebSearcher
	Warnings         []string // Non-fatal issues reported to the user.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	logger.Warn("%s", msg)
}

// Initialise builds every driven service once. A component that is not
// configured is marked disabled; one that cannot be built or reached is
// marked failed and left nil. health may be nil.
func Initialise(ctx context.Context, settings *domain.AppSettings, health HealthRecorder) *InitResult {
	if health == nil {
		health = nopHealth{}
	}
	result := &InitResult{}
	logger.Section("Initialising services")

	index, err := CreateAndValidateVectorIndex(ctx, &settings.Vector)
	if err != nil {
		health.MarkFailed(domain.ComponentVectorStore, err)
		result.warn("vector store unavailable: %v", err)
	} else {
		result.VectorIndex = index
		health.MarkReady(domain.ComponentVectorStore)
	}

	switch embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding); {
	case err != nil:
		health.MarkFailed(domain.ComponentEmbedding, err)
		result.warn("%v", err)
	case embedder == nil:
		health.MarkDisabled(domain.ComponentEmbedding)
		result.warn("embedding provider not configured. Set OPENAI_API_KEY or run 'ragent settings embedding'")
	default:
		result.EmbeddingService = WithCache(ctx, embedder, &settings.Cache)
		health.MarkReady(domain.ComponentEmbedding)
	}

	switch llm, err := CreateAndValidateLLMService(&settings.LLM); {
	case err != nil:
		health.MarkFailed(domain.ComponentLLM, err)
		result.warn("%v", err)
	case llm == nil:
		health.MarkDisabled(domain.ComponentLLM)
		result.warn("LLM provider not configured. Set ANTHROPIC_API_KEY or run 'ragent settings llm'")
	default:
		result.LLMService = llm
		health.MarkReady(domain.ComponentLLM)
	}

	switch sandbox, err := CreateSandbox(&settings.Sandbox); {
	case err != nil:
		health.MarkFailed(domain.ComponentSandbox, err)
		result.warn("code sandbox unavailable: %v", err)
	case sandbox == nil:
		health.MarkDisabled(domain.ComponentSandbox)
	default:
		result.Sandbox = sandbox
		health.MarkReady(domain.ComponentSandbox)
	}

	result.WebSearcher = websearch.NewStub()
	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'ragent settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'ragent settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'ragent settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'ragent settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateVectorIndex opens the configured vector index and pings it.
func CreateAndValidateVectorIndex(ctx context.Context, settings *domain.VectorSettings) (driven.VectorIndex, error) {
	index, err := CreateVectorIndex(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := index.Ping(pingCtx); err != nil {
		index.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w)", domain.ErrVectorIndexUnavailable, settings.Backend, err)
	}
	return index, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil
	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)
	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorIndex opens the vector index selected by settings.Backend.
// An empty backend selects the in-memory index.
func CreateVectorIndex(settings *domain.VectorSettings) (driven.VectorIndex, error) {
	backend := domain.VectorBackendMemory
	if settings != nil && settings.Backend != "" {
		backend = settings.Backend
	}

	switch backend {
	case domain.VectorBackendMemory:
		return memory.NewVectorIndex(), nil
	case domain.VectorBackendSQLite:
		return sqlite.NewStore(settings.DataDir)
	case domain.VectorBackendQdrant:
		return qdrant.NewVectorIndex(qdrant.Config{
			URL:    settings.QdrantURL,
			APIKey: settings.QdrantAPIKey,
		})
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", backend)
	}
}

// CreateSandbox creates the remote code sandbox. Returns nil when no
// runtime URL is configured.
func CreateSandbox(settings *domain.SandboxSettings) (driven.CodeSandbox, error) {
	if settings == nil || settings.URL == "" {
		return nil, nil
	}
	return remote.New(remote.Config{
		URL:               settings.URL,
		Token:             settings.Token,
		Timeout:           time.Duration(settings.TimeoutMillis) * time.Millisecond,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// WithCache wraps an embedding service with the redis cache when an
// address is configured, falling back to an in-process LRU.
func WithCache(ctx context.Context, svc driven.EmbeddingService, settings *domain.CacheSettings) driven.EmbeddingService {
	if settings != nil && settings.RedisAddr != "" {
		cache, err := rediscache.NewCache(ctx, rediscache.Config{
			Addr: settings.RedisAddr,
			TTL:  time.Duration(settings.TTLSeconds) * time.Second,
		})
		if err == nil {
			logger.Info("Embedding cache: redis at %s", settings.RedisAddr)
			return cached.New(svc, cache)
		}
		logger.Warn("redis cache unavailable, using in-memory cache: %v", err)
	}
	return cached.New(svc, memorycache.NewCache(memorycache.DefaultCapacity))
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

type nopHealth struct{}

func (nopHealth) MarkReady(string)         {}
func (nopHealth) MarkFailed(string, error) {}
func (nopHealth) MarkDisabled(string)      {}
