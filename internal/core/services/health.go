package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// HealthService tracks the ready lifecycle of process-wide services.
// Components are registered not ready at startup and marked ready, failed
// or disabled once their construction finishes. Operations that need a
// component consult Check and fail with domain.ErrNotReady instead of
// touching a half-built dependency.
type HealthService struct {
	mu         sync.RWMutex
	components map[string]domain.ComponentStatus
	required   map[string]bool
}

// NewHealthService creates a health tracker with the given components
// registered as required and not ready.
func NewHealthService(required ...string) *HealthService {
	h := &HealthService{
		components: make(map[string]domain.ComponentStatus),
		required:   make(map[string]bool),
	}
	for _, name := range required {
		h.Register(name, true)
	}
	return h
}

// Register adds a component in the not ready state.
// Registering an existing component resets it.
func (h *HealthService) Register(name string, required bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components[name] = domain.ComponentStatus{Name: name, State: domain.StateNotReady}
	h.required[name] = required
}

// MarkReady records that a component finished construction.
func (h *HealthService) MarkReady(name string) {
	h.set(domain.ComponentStatus{Name: name, State: domain.StateReady})
	logger.Debug("Component %s ready", name)
}

// MarkFailed records that a component could not be constructed.
func (h *HealthService) MarkFailed(name string, err error) {
	status := domain.ComponentStatus{Name: name, State: domain.StateFailed}
	if err != nil {
		status.Error = err.Error()
	}
	h.set(status)
	logger.Warn("Component %s failed: %v", name, err)
}

// MarkDisabled records that a component is intentionally not configured.
// Disabled components never count against Healthy.
func (h *HealthService) MarkDisabled(name string) {
	h.set(domain.ComponentStatus{Name: name, State: domain.StateDisabled})
	h.mu.Lock()
	h.required[name] = false
	h.mu.Unlock()
}

func (h *HealthService) set(status domain.ComponentStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.required[status.Name]; !ok {
		h.required[status.Name] = false
	}
	h.components[status.Name] = status
}

// Status returns every tracked component, sorted by name.
func (h *HealthService) Status() []domain.ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.ComponentStatus, 0, len(h.components))
	for _, c := range h.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Ready reports whether the named component is ready.
func (h *HealthService) Ready(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.components[name].Ready()
}

// Healthy reports whether every required component is ready.
func (h *HealthService) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for name, req := range h.required {
		if req && !h.components[name].Ready() {
			return false
		}
	}
	return true
}

// Check returns nil when the component is ready, or an error wrapping
// domain.ErrNotReady describing its current state. A nil receiver treats
// every component as ready.
func (h *HealthService) Check(name string) error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	c, ok := h.components[name]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s is not registered", domain.ErrNotReady, name)
	}
	switch c.State {
	case domain.StateReady:
		return nil
	case domain.StateFailed:
		return fmt.Errorf("%w: %s failed: %s", domain.ErrNotReady, name, c.Error)
	case domain.StateDisabled:
		return fmt.Errorf("%w: %s is not configured", domain.ErrNotReady, name)
	default:
		return fmt.Errorf("%w: %s is still starting", domain.ErrNotReady, name)
	}
}
