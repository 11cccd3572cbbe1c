package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRPS            = "llm.requests_per_second"
	keyVectorBackend     = "vector.backend"
	keyVectorDataDir     = "vector.data_dir"
	keyVectorQdrantURL   = "vector.qdrant_url"
	keyVectorQdrantKey   = "vector.qdrant_api_key"
	keyCacheRedisAddr    = "cache.redis_addr"
	keyCacheTTL          = "cache.ttl_seconds"
	keySandboxURL        = "sandbox.url"
	keySandboxToken      = "sandbox.token"
	keySandboxTimeout    = "sandbox.timeout_ms"
	keySandboxRPS        = "sandbox.requests_per_second"
	keyServerAddr        = "server.addr"
	keyChunkerSize       = "chunker.size"
	keyChunkerOverlap    = "chunker.overlap"
	keyAgentModel        = "agent.model"
	keyAgentMaxIter      = "agent.max_iterations"
	keyAgentMaxTokens    = "agent.max_tokens"
	envPrefix            = "RAGENT_"
	envAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	envOpenAIAPIKey      = "OPENAI_API_KEY"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// SettingsService manages application settings.
// Values resolve in order: environment, config store, defaults.
// Any key can be overridden with RAGENT_ plus the upper-cased key,
// dots replaced by underscores, e.g. RAGENT_LLM_MODEL.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.ConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.ConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment source. Used by tests.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = lookup
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.getString(keyEmbedBaseURL, ""),
			APIKey:   s.getString(keyEmbedAPIKey, ""),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.getString(keyLLMBaseURL, ""),
			APIKey:            s.getString(keyLLMAPIKey, ""),
			RequestsPerSecond: s.getFloat(keyLLMRPS, defaults.LLM.RequestsPerSecond),
		},
		Vector: domain.VectorSettings{
			Backend:      s.getVectorBackend(defaults.Vector.Backend),
			DataDir:      s.getString(keyVectorDataDir, defaults.Vector.DataDir),
			QdrantURL:    s.getString(keyVectorQdrantURL, defaults.Vector.QdrantURL),
			QdrantAPIKey: s.getString(keyVectorQdrantKey, ""),
		},
		Cache: domain.CacheSettings{
			RedisAddr:  s.getString(keyCacheRedisAddr, defaults.Cache.RedisAddr),
			TTLSeconds: s.getInt(keyCacheTTL, defaults.Cache.TTLSeconds),
		},
		Sandbox: domain.SandboxSettings{
			URL:               s.getString(keySandboxURL, defaults.Sandbox.URL),
			Token:             s.getString(keySandboxToken, ""),
			TimeoutMillis:     int64(s.getInt(keySandboxTimeout, int(defaults.Sandbox.TimeoutMillis))),
			RequestsPerSecond: s.getFloat(keySandboxRPS, defaults.Sandbox.RequestsPerSecond),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		Chunker: domain.ChunkerSettings{
			Size:    s.getInt(keyChunkerSize, defaults.Chunker.Size),
			Overlap: s.getInt(keyChunkerOverlap, defaults.Chunker.Overlap),
		},
		Agent: domain.AgentSettings{
			Model:         s.getString(keyAgentModel, defaults.Agent.Model),
			MaxIterations: s.getInt(keyAgentMaxIter, defaults.Agent.MaxIterations),
			MaxTokens:     s.getInt(keyAgentMaxTokens, defaults.Agent.MaxTokens),
		},
	}

	s.applyProviderKeys(settings)
	return settings, nil
}

// applyProviderKeys fills provider API keys from the vendor environment
// variables and picks a provider when only a key is present.
func (s *SettingsService) applyProviderKeys(settings *domain.AppSettings) {
	anthropicKey, _ := s.lookupEnv(envAnthropicAPIKey)
	openaiKey, _ := s.lookupEnv(envOpenAIAPIKey)

	if settings.LLM.Provider == "" {
		switch {
		case anthropicKey != "":
			settings.LLM.Provider = domain.AIProviderAnthropic
		case openaiKey != "":
			settings.LLM.Provider = domain.AIProviderOpenAI
		}
		if settings.LLM.Provider != "" && settings.LLM.Model == "" {
			settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
		}
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = anthropicKey
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = openaiKey
		}
	}

	if settings.Embedding.Provider == "" && openaiKey != "" {
		settings.Embedding.Provider = domain.AIProviderOpenAI
		if settings.Embedding.Model == "" {
			settings.Embedding.Model = domain.DefaultEmbeddingModels()[domain.AIProviderOpenAI]
		}
	}
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = openaiKey
	}

	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaBaseURL
	}
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaBaseURL
	}
}

// Save persists application settings.
// Secrets are only written when set and not supplied by the environment.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyVectorBackend, string(settings.Vector.Backend)},
		{keyVectorQdrantURL, settings.Vector.QdrantURL},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keySandboxURL, settings.Sandbox.URL},
		{keySandboxTimeout, settings.Sandbox.TimeoutMillis},
		{keyServerAddr, settings.Server.Addr},
		{keyChunkerSize, settings.Chunker.Size},
		{keyChunkerOverlap, settings.Chunker.Overlap},
		{keyAgentModel, settings.Agent.Model},
		{keyAgentMaxIter, settings.Agent.MaxIterations},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:     settings.Embedding.APIKey,
		keyLLMAPIKey:       settings.LLM.APIKey,
		keyVectorQdrantKey: settings.Vector.QdrantAPIKey,
		keySandboxToken:    settings.Sandbox.Token,
	}
	for key, value := range secrets {
		if value == "" || s.secretFromEnv(key, value) {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !supportsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend selects the vector index implementation.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: invalid vector backend: %s", domain.ErrInvalidInput, backend)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Vector.Backend = backend
	return s.Save(settings)
}

// Validate checks that current settings can serve queries.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.LLM.IsConfigured() {
		errs = append(errs, errors.New("LLM provider is not configured"))
	}
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, errors.New("embedding provider is not configured"))
	}
	if settings.Vector.Backend == domain.VectorBackendQdrant && settings.Vector.QdrantURL == "" {
		errs = append(errs, errors.New("qdrant backend requires vector.qdrant_url"))
	}
	if settings.Chunker.Overlap >= settings.Chunker.Size {
		errs = append(errs, fmt.Errorf("chunker overlap %d must be smaller than size %d",
			settings.Chunker.Overlap, settings.Chunker.Size))
	}
	if settings.Agent.MaxIterations < domain.MinMaxIterations || settings.Agent.MaxIterations > domain.MaxMaxIterations {
		errs = append(errs, fmt.Errorf("agent.max_iterations must be between %d and %d",
			domain.MinMaxIterations, domain.MaxMaxIterations))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateLLM(&settings.LLM)
}

// ValidateVectorConfig opens the configured vector index and pings it.
func (s *SettingsService) ValidateVectorConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateVector(&settings.Vector)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) secretFromEnv(key, value string) bool {
	if v, ok := s.env(key); ok && v == value {
		return true
	}
	for _, name := range []string{envAnthropicAPIKey, envOpenAIAPIKey} {
		if v, ok := s.lookupEnv(name); ok && v == value {
			return true
		}
	}
	return false
}

func envKey(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (s *SettingsService) env(key string) (string, bool) {
	v, ok := s.lookupEnv(envKey(key))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.env(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.getString(keyVectorBackend, ""))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func supportsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a local provider's endpoint and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaBaseURL
	}
	return current
}
