package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultRAGTemperature is the sampling temperature for RAG answers.
const DefaultRAGTemperature = 0.7

// RAGQuery asks a single-shot question against a knowledge base.
type RAGQuery struct {
	Query           string   `json:"query"`
	KnowledgeBaseID string   `json:"knowledge_base_id"`
	TopK            int      `json:"top_k"`
	IncludeSources  *bool    `json:"include_sources,omitempty"`
	Model           string   `json:"model"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty"`
}

// Normalise applies defaults and validates the query.
func (q *RAGQuery) Normalise() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	q.KnowledgeBaseID = KnowledgeBaseOrDefault(q.KnowledgeBaseID)
	if q.TopK == 0 {
		q.TopK = DefaultTopK
	}
	if err := ValidateTopK(q.TopK); err != nil {
		return err
	}
	if q.IncludeSources == nil {
		include := true
		q.IncludeSources = &include
	}
	if q.Model == "" {
		q.Model = DefaultModel
	}
	if q.Temperature == nil {
		t := DefaultRAGTemperature
		q.Temperature = &t
	}
	if *q.Temperature < 0 || *q.Temperature > 1 {
		return fmt.Errorf("%w: temperature must be between 0 and 1", ErrInvalidInput)
	}
	if q.MaxTokens <= 0 {
		q.MaxTokens = DefaultMaxTokens
	}
	return nil
}

// RAGAnswer is the generated answer to a RAGQuery.
// Sources is nil unless the caller asked for them; requested sources are
// encoded even when retrieval found nothing.
type RAGAnswer struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
	Usage   Usage          `json:"usage"`
	Model   string         `json:"model"`
}

// MarshalJSON omits sources only when they were not requested.
func (a RAGAnswer) MarshalJSON() ([]byte, error) {
	out := struct {
		Answer  string          `json:"answer"`
		Sources *[]SearchResult `json:"sources,omitempty"`
		Usage   Usage           `json:"usage"`
		Model   string          `json:"model"`
	}{Answer: a.Answer, Usage: a.Usage, Model: a.Model}
	if a.Sources != nil {
		out.Sources = &a.Sources
	}
	return json.Marshal(out)
}
