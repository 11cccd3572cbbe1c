package normalisers

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
	"github.com/custodia-labs/ragent/internal/normalisers/decode"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches extraction to the highest-priority normaliser
// registered for a file's extension.
type Registry struct {
	mu          sync.RWMutex
	byExtension map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser under each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.Extensions() {
		list := append(r.byExtension[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExtension[ext] = list
	}
}

// Extract returns the plain text of a file. Files whose extension has no
// normaliser are decoded as UTF-8 with invalid bytes replaced.
func (r *Registry) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	ext := domain.FileType(filename)

	r.mu.RLock()
	candidates := r.byExtension[ext]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		logger.Debug("No normaliser for %q, decoding as text", ext)
		return decode.Text(content), nil
	}
	return candidates[0].Normalise(ctx, content, filename)
}

// SupportedExtensions returns all extensions with a dedicated normaliser, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
