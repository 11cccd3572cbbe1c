package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// ToolService declares the available tools and dispatches invocations.
type ToolService interface {
	// ListTools returns every registered tool definition, sorted by name.
	ListTools() []domain.ToolDefinition

	// Definitions returns the definitions for names, or all tools when
	// names is empty. Unknown names are ignored.
	Definitions(names []string) []domain.ToolDefinition

	// Invoke runs a tool. Failures, including unknown names, come back as
	// an {"error": message} result rather than a Go error.
	// defaultKnowledgeBase is used by tools that need one when the
	// parameters omit it.
	Invoke(ctx context.Context, name string, params map[string]any, defaultKnowledgeBase string) map[string]any
}
