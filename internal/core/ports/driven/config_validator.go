package driven

import "github.com/custodia-labs/ragent/internal/core/domain"

// ConfigValidator checks settings against the live backends they name.
// Each method returns nil when the component is not configured.
type ConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateVector opens the selected index and pings it.
	ValidateVector(config *domain.VectorSettings) error
}
