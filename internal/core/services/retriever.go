package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// RetrieverService embeds chunks into a vector index partitioned by
// knowledge base and answers similarity queries against it.
type RetrieverService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	health   *HealthService
}

// NewRetrieverService creates a retriever. health may be nil, in which
// case the index and embedder are assumed ready.
func NewRetrieverService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	health *HealthService,
) *RetrieverService {
	return &RetrieverService{
		index:    index,
		embedder: embedder,
		health:   health,
	}
}

// Upsert embeds chunks in a single batch and writes them to the knowledge
// base. When ids is nil a random UUID is generated per chunk.
func (s *RetrieverService) Upsert(
	ctx context.Context, knowledgeBaseID string, chunks []domain.Chunk, ids []string,
) ([]string, error) {
	if ids != nil && len(ids) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d ids for %d chunks", domain.ErrInvalidInput, len(ids), len(chunks))
	}
	if len(chunks) == 0 {
		return []string{}, nil
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	kb := domain.KnowledgeBaseOrDefault(knowledgeBaseID)
	if ids == nil {
		ids = make([]string, len(chunks))
		for i := range ids {
			ids[i] = uuid.NewString()
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	logger.Debug("Embedding %d chunks for knowledge base %q", len(texts), kb)
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %w", domain.ErrRetrievalUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrRetrievalUnavailable, len(vectors), len(chunks))
	}

	records := make([]driven.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = driven.VectorRecord{
			ID:       ids[i],
			Vector:   vectors[i],
			Text:     c.Text,
			Metadata: domain.CopyMetadata(c.Metadata),
		}
	}

	if err := s.index.Upsert(ctx, kb, records); err != nil {
		return nil, fmt.Errorf("%w: upsert: %w", domain.ErrRetrievalUnavailable, err)
	}

	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Search embeds the query and returns the top-k chunks by cosine
// similarity, best first, with Score = 1 - distance.
func (s *RetrieverService) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	logger.Section("Retrieval")

	req.Query = strings.TrimSpace(req.Query)
	if err := req.Normalise(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger.Debug("Query: %q, kb=%s, k=%d", req.Query, req.KnowledgeBaseID, req.TopK)

	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrievalUnavailable, err)
	}

	hits, err := s.index.Query(ctx, req.KnowledgeBaseID, vector, req.TopK, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrRetrievalUnavailable, err)
	}

	results := make([]domain.SearchResult, 0, hits.Len())
	for i := 0; i < hits.Len(); i++ {
		var meta map[string]any
		if i < len(hits.Metadatas) {
			meta = hits.Metadatas[i]
		}
		if meta == nil {
			meta = map[string]any{}
		}
		var distance float64
		if i < len(hits.Distances) {
			distance = hits.Distances[i]
		}
		var content string
		if i < len(hits.Documents) {
			content = hits.Documents[i]
		}
		results = append(results, domain.SearchResult{
			Content:  content,
			Metadata: meta,
			Score:    1 - distance,
		})
	}

	logger.Debug("Retrieved %d results", len(results))
	return results, nil
}

// DeleteDocument removes every chunk whose document_id metadata equals
// documentID and returns how many were removed.
func (s *RetrieverService) DeleteDocument(ctx context.Context, documentID, knowledgeBaseID string) (int, error) {
	if strings.TrimSpace(documentID) == "" {
		return 0, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if err := s.indexReady(); err != nil {
		return 0, err
	}

	kb := domain.KnowledgeBaseOrDefault(knowledgeBaseID)
	n, err := s.index.DeleteWhere(ctx, kb, domain.Filter{domain.MetaDocumentID: documentID})
	if err != nil {
		return 0, fmt.Errorf("%w: delete: %w", domain.ErrRetrievalUnavailable, err)
	}
	logger.Debug("Deleted %d chunks of document %s from %s", n, documentID, kb)
	return n, nil
}

// ListKnowledgeBases returns the existing knowledge base IDs.
func (s *RetrieverService) ListKnowledgeBases(ctx context.Context) ([]string, error) {
	if err := s.indexReady(); err != nil {
		return nil, err
	}
	kbs, err := s.index.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list partitions: %w", domain.ErrRetrievalUnavailable, err)
	}
	return kbs, nil
}

// Count returns the number of stored chunks in a knowledge base.
func (s *RetrieverService) Count(ctx context.Context, knowledgeBaseID string) (int, error) {
	if err := s.indexReady(); err != nil {
		return 0, err
	}
	n, err := s.index.Count(ctx, domain.KnowledgeBaseOrDefault(knowledgeBaseID))
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrRetrievalUnavailable, err)
	}
	return n, nil
}

func (s *RetrieverService) indexReady() error {
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	return s.health.Check(domain.ComponentVectorStore)
}

func (s *RetrieverService) ready() error {
	if err := s.indexReady(); err != nil {
		return err
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	return s.health.Check(domain.ComponentEmbedding)
}
