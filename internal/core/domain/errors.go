package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input such as an
	// out-of-range top_k or max_iterations, or chunk overlap >= chunk size.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotReady indicates a process-wide service has not finished startup.
	ErrNotReady = errors.New("service not ready")

	// ErrRetrievalUnavailable indicates the vector index or embedding backend
	// could not be reached.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationUnavailable indicates the model backend was unreachable or
	// returned a malformed response. Fatal to an agent task.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrToolExecutionFailed indicates a tool handler failed.
	// Inside the agent loop this is captured as data, never returned.
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// ErrUnknownTool indicates a tool name is not in the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSandboxUnavailable indicates no code sandbox is configured.
	ErrSandboxUnavailable = errors.New("code sandbox not configured")
)
