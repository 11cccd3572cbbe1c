package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// RAGService answers a question from retrieved context in one generation.
type RAGService interface {
	Query(ctx context.Context, q domain.RAGQuery) (*domain.RAGAnswer, error)
}
