package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond paces outbound generation calls. Zero disables pacing.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendMemory VectorBackend = "memory"
	VectorBackendSQLite VectorBackend = "sqlite"
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendSQLite, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMemory:
		return "In-memory (lost on exit)"
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendQdrant:
		return "Qdrant (remote)"
	default:
		return unknownDescription
	}
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	// Backend is the index implementation.
	Backend VectorBackend

	// DataDir is where the sqlite backend keeps its database.
	DataDir string

	// QdrantURL is the Qdrant REST endpoint.
	QdrantURL string

	// QdrantAPIKey authenticates against Qdrant Cloud.
	QdrantAPIKey string
}

// CacheSettings configures the embedding cache.
type CacheSettings struct {
	// RedisAddr enables the redis cache when set, e.g. "localhost:6379".
	RedisAddr string

	// TTLSeconds expires cached embeddings. Zero keeps them forever.
	TTLSeconds int
}

// SandboxSettings configures the remote code execution runtime.
type SandboxSettings struct {
	// URL is the runtime endpoint. Empty disables python_repl.
	URL string

	// Token authorises requests to the runtime.
	Token string

	// TimeoutMillis bounds a single execution.
	TimeoutMillis int64

	// RequestsPerSecond paces sandbox calls. Zero disables pacing.
	RequestsPerSecond float64
}

// DefaultServerAddr is the HTTP API listen address.
const DefaultServerAddr = ":8000"

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// ChunkerSettings configures document chunking.
type ChunkerSettings struct {
	Size    int
	Overlap int
}

// AgentSettings holds agent loop defaults.
type AgentSettings struct {
	Model         string
	MaxIterations int
	MaxTokens     int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Vector    VectorSettings
	Cache     CacheSettings
	Sandbox   SandboxSettings
	Server    ServerSettings
	Chunker   ChunkerSettings
	Agent     AgentSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured until an API key or provider is set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Vector: VectorSettings{
			Backend: VectorBackendMemory,
		},
		Sandbox: SandboxSettings{
			TimeoutMillis: 30000,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
		Chunker: ChunkerSettings{
			Size:    1000,
			Overlap: 200,
		},
		Agent: AgentSettings{
			Model:         DefaultModel,
			MaxIterations: DefaultMaxIterations,
			MaxTokens:     DefaultMaxTokens,
		},
	}
}

// AllVectorBackends returns the selectable vector index implementations.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendMemory,
		VectorBackendSQLite,
		VectorBackendQdrant,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: DefaultModel,
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
