package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// RAGService answers a question with one generation over retrieved context.
type RAGService struct {
	retriever driving.Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	health    *HealthService
}

// NewRAGService creates a RAG service. prompts and health may be nil.
func NewRAGService(
	retriever driving.Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	health *HealthService,
) *RAGService {
	return &RAGService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		health:    health,
	}
}

// Query retrieves the top-k chunks, assembles them into the prompt and
// generates a single answer. Sources are attached only when requested.
func (s *RAGService) Query(ctx context.Context, q domain.RAGQuery) (*domain.RAGAnswer, error) {
	if err := q.Normalise(); err != nil {
		return nil, err
	}
	if s.retriever == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if err := s.health.Check(domain.ComponentLLM); err != nil {
		return nil, err
	}

	logger.Section("RAG Query")
	logger.Debug("Query: %q, kb=%s, k=%d, model=%s", q.Query, q.KnowledgeBaseID, q.TopK, q.Model)

	results, err := s.retriever.Search(ctx, domain.SearchRequest{
		Query:           strings.TrimSpace(q.Query),
		KnowledgeBaseID: q.KnowledgeBaseID,
		TopK:            q.TopK,
	})
	if err != nil {
		return nil, err
	}

	contextText := AssembleContext(results)
	user := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptRAGUser), contextText, q.Query)

	resp, err := s.llm.Generate(ctx, driven.GenerationRequest{
		Model:       q.Model,
		System:      loadPrompt(s.prompts, driven.PromptRAGSystem),
		Messages:    []domain.Message{domain.UserText(user)},
		MaxTokens:   q.MaxTokens,
		Temperature: q.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrGenerationUnavailable)
	}

	answer := &domain.RAGAnswer{
		Answer: resp.Text,
		Usage:  resp.Usage,
		Model:  q.Model,
	}
	if *q.IncludeSources {
		answer.Sources = results
		if answer.Sources == nil {
			answer.Sources = []domain.SearchResult{}
		}
	}

	logger.Debug("Answered from %d sources, usage=%d/%d",
		len(results), resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return answer, nil
}
