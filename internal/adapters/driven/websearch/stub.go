// Package websearch provides the web_search backend. No search provider is
// wired yet: the stub answers every query with a not-implemented notice.
package websearch

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Stub implements the interface.
var _ driven.WebSearcher = (*Stub)(nil)

// NotImplementedMessage is returned for every query.
const NotImplementedMessage = "Web search not implemented yet"

// Stub is a WebSearcher that performs no search.
type Stub struct{}

// NewStub creates a stub searcher.
func NewStub() *Stub {
	return &Stub{}
}

// Search echoes the query with a not-implemented message.
func (s *Stub) Search(_ context.Context, query string) (map[string]any, error) {
	return map[string]any{
		"message": NotImplementedMessage,
		"query":   query,
	}, nil
}
