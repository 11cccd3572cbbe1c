// Package tui provides an interactive terminal user interface for ragent.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"errors"

	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

// Ports validation errors.
var (
	ErrInvalidPorts        = errors.New("tui: invalid ports configuration")
	ErrMissingAgentService = errors.New("tui: agent service is required")
)

// Ports aggregates the driving ports and task defaults the TUI needs.
type Ports struct {
	// Agent runs chat tasks (required).
	Agent driving.AgentService

	// Retriever backs the knowledge base search view. Search is hidden
	// from the menu when nil.
	Retriever driving.Retriever

	// KnowledgeBaseID scopes chat tasks and searches.
	KnowledgeBaseID string

	// Model overrides the agent model when set.
	Model string

	// MaxIterations bounds each chat task.
	MaxIterations int

	// TopK is the number of search results to show.
	TopK int
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(agent driving.AgentService, retriever driving.Retriever) *Ports {
	return &Ports{
		Agent:     agent,
		Retriever: retriever,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Agent == nil {
		return ErrMissingAgentService
	}
	return nil
}
