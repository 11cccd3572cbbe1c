package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// Retriever stores chunk embeddings and runs similarity search.
type Retriever interface {
	// Upsert embeds chunks in one batch and writes them to the knowledge base.
	// When ids is nil a UUID is generated per chunk. Returns the stored IDs.
	Upsert(ctx context.Context, knowledgeBaseID string, chunks []domain.Chunk, ids []string) ([]string, error)

	// Search returns the top-k results, best first, with score = 1 - distance.
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)

	// DeleteDocument removes every chunk whose metadata names documentID.
	DeleteDocument(ctx context.Context, documentID, knowledgeBaseID string) (int, error)

	// ListKnowledgeBases returns the existing knowledge base IDs.
	ListKnowledgeBases(ctx context.Context) ([]string, error)

	// Count returns the number of stored chunks in a knowledge base.
	Count(ctx context.Context, knowledgeBaseID string) (int, error)
}
