// Package postprocessors selects the chunking strategy used at ingestion.
package postprocessors

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// BuilderFunc creates a Chunker from its settings.
type BuilderFunc func(cfg driven.ConfigReader) (driven.Chunker, error)

// Registry maps chunker names to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds or replaces the builder for name, which should match the
// built chunker's Name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Build creates the named chunker. Unknown names wrap
// domain.ErrUnsupportedType and list what is available.
func (r *Registry) Build(name string, cfg driven.ConfigReader) (driven.Chunker, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: chunker %q (available: %v)", domain.ErrUnsupportedType, name, r.Names())
	}
	return builder(cfg)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
