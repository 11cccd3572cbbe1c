package driving

import "github.com/custodia-labs/ragent/internal/core/domain"

// HealthService reports the ready lifecycle of process-wide services.
type HealthService interface {
	// Status returns every tracked component, sorted by name.
	Status() []domain.ComponentStatus

	// Ready reports whether the named component is ready.
	Ready(name string) bool

	// Healthy reports whether every required component is ready.
	Healthy() bool
}
