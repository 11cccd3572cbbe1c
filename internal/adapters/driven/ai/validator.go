package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

var _ driven.ConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds each configured backend once and pings it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using the startup ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding pings the embedding provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM pings the LLM provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}

// ValidateVector opens the index, pings it and closes it again. The
// memory backend always passes.
func (v *ConfigValidator) ValidateVector(config *domain.VectorSettings) error {
	if config == nil || config.Backend == "" || config.Backend == domain.VectorBackendMemory {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	index, err := CreateAndValidateVectorIndex(ctx, config)
	if err != nil {
		return err
	}
	return index.Close()
}
