package driven

import (
	"context"
	"time"
)

// CodeSandbox executes untrusted code in an isolated runtime with
// resource and time limits. Isolation is the runtime's responsibility.
type CodeSandbox interface {
	// Execute runs code and returns its captured output.
	// A runtime-reported failure is returned as an error.
	Execute(ctx context.Context, req SandboxRequest) (*SandboxResult, error)
}

// SandboxRequest describes one execution.
type SandboxRequest struct {
	Language string
	Code     string
	Timeout  time.Duration
}

// SandboxResult is the captured output of one execution.
type SandboxResult struct {
	Stdout   string
	Stderr   string
	Value    any
	Duration time.Duration
}

// WebSearcher looks up current information on the web.
type WebSearcher interface {
	// Search returns a JSON-serialisable result for query.
	Search(ctx context.Context, query string) (map[string]any, error)
}
