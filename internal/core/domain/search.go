package domain

import "fmt"

// Bounds for the number of retrieval results.
const (
	MinTopK     = 1
	MaxTopK     = 20
	DefaultTopK = 5
)

// Filter is an exact-match metadata predicate.
// A record matches when every key is present with an equal value.
type Filter map[string]any

// Matches reports whether metadata satisfies the filter.
// An empty filter matches everything.
func (f Filter) Matches(metadata map[string]any) bool {
	for k, want := range f {
		got, ok := metadata[k]
		if !ok || !metadataEqual(got, want) {
			return false
		}
	}
	return true
}

// metadataEqual compares values after JSON round-trips, where integers
// may come back as float64.
func metadataEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// SearchRequest describes a similarity search against one knowledge base.
type SearchRequest struct {
	Query           string `json:"query"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	TopK            int    `json:"top_k"`
	Filter          Filter `json:"filter,omitempty"`
}

// Normalise applies defaults and validates the request.
func (r *SearchRequest) Normalise() error {
	if r.Query == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	r.KnowledgeBaseID = KnowledgeBaseOrDefault(r.KnowledgeBaseID)
	if r.TopK == 0 {
		r.TopK = DefaultTopK
	}
	return ValidateTopK(r.TopK)
}

// ValidateTopK checks k is within [MinTopK, MaxTopK].
func ValidateTopK(k int) error {
	if k < MinTopK || k > MaxTopK {
		return fmt.Errorf("%w: top_k must be between %d and %d, got %d", ErrInvalidInput, MinTopK, MaxTopK, k)
	}
	return nil
}

// SearchResult is a ranked retrieval hit. Score is 1 - distance.
type SearchResult struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Source returns the metadata source annotation, if present.
func (r SearchResult) Source() (string, bool) {
	v, ok := r.Metadata[MetaSource]
	if !ok || v == nil {
		return "", false
	}
	s := fmt.Sprint(v)
	return s, s != ""
}
