package mcp

import (
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

// Ports aggregates the driving ports served over MCP.
type Ports struct {
	// Tools dispatches registry tools. Required.
	Tools driving.ToolService

	// RAG answers questions from a knowledge base. Optional.
	RAG driving.RAGService

	// Agent runs multi-step tasks. Optional.
	Agent driving.AgentService

	// Documents backs the knowledge base resources. Optional.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolService
	}
	return nil
}
