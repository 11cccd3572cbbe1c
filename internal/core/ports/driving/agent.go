package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// AgentService runs bounded tool-use conversations.
type AgentService interface {
	// Execute drives the agent loop until the model answers without tool
	// calls or the iteration budget runs out. A generation failure aborts
	// the task and no partial steps are returned.
	Execute(ctx context.Context, req domain.TaskRequest) (*domain.TaskResult, error)
}

