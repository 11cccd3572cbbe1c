package domain

// Component names tracked by the ready lifecycle.
const (
	ComponentVectorStore = "vectorstore"
	ComponentLLM         = "llm"
	ComponentEmbedding   = "embedding"
	ComponentSandbox     = "sandbox"
)

// ComponentState is the lifecycle state of a process-wide service.
type ComponentState string

// Lifecycle states. A component starts not ready and moves to ready or
// failed exactly once during startup.
const (
	StateNotReady ComponentState = "not_ready"
	StateReady    ComponentState = "ready"
	StateFailed   ComponentState = "failed"
	StateDisabled ComponentState = "disabled"
)

// ComponentStatus reports one component's state.
type ComponentStatus struct {
	Name  string         `json:"name"`
	State ComponentState `json:"state"`
	Error string         `json:"error,omitempty"`
}

// Ready reports whether the component can serve requests.
func (c ComponentStatus) Ready() bool {
	return c.State == StateReady
}
