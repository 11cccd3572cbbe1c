// Package remote provides a driven.CodeSandbox that executes code on a
// remote runtime service over HTTP. The runtime owns isolation: resource
// limits, no ambient filesystem, no network.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ragent/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Sandbox implements the interface.
var _ driven.CodeSandbox = (*Sandbox)(nil)

// Errors for remote sandbox operations.
var (
	// ErrConnectionFailed is returned when the runtime cannot be reached.
	ErrConnectionFailed = errors.New("connection to sandbox runtime failed")

	// ErrExecutionFailed is returned when the runtime reports an execution error.
	ErrExecutionFailed = errors.New("sandbox execution failed")
)

// Default configuration values.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultTimeoutOverhead = 5 * time.Second
	DefaultMemoryBytes     = 256 << 20
	DefaultPidsMax         = 32
)

// Config holds configuration for the remote sandbox.
type Config struct {
	// URL is the runtime's execute endpoint (required).
	URL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout is the default execution timeout (default: 10s).
	Timeout time.Duration

	// TimeoutOverhead pads the HTTP deadline for network latency (default: 5s).
	TimeoutOverhead time.Duration

	// Limits are forwarded to the runtime with every request.
	Limits Limits

	// RequestsPerSecond paces executions. Zero disables pacing.
	RequestsPerSecond float64
}

// Limits encodes the resource ceilings the runtime enforces.
type Limits struct {
	CPUQuotaMillis int64 `json:"cpu_quota_millis,omitempty"`
	MemoryBytes    int64 `json:"memory_bytes,omitempty"`
	PidsMax        int64 `json:"pids_max,omitempty"`
	DiskBytes      int64 `json:"disk_bytes,omitempty"`
	Network        bool  `json:"network"`
}

// Sandbox posts code to a remote runtime.
type Sandbox struct {
	client   *http.Client
	url      string
	token    string
	timeout  time.Duration
	overhead time.Duration
	limits   Limits
	limiter  *ratelimit.Limiter
}

// executeRequest is the wire request to the runtime.
type executeRequest struct {
	Request executePayload `json:"request"`
}

type executePayload struct {
	Language      string `json:"language"`
	Code          string `json:"code"`
	TimeoutMillis int64  `json:"timeout_ms"`
	Limits        Limits `json:"limits"`
}

// executeResponse is the wire response from the runtime.
type executeResponse struct {
	Result *struct {
		Value          any    `json:"value,omitempty"`
		Stdout         string `json:"stdout,omitempty"`
		Stderr         string `json:"stderr,omitempty"`
		DurationMillis int64  `json:"duration_ms,omitempty"`
	} `json:"result,omitempty"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a remote sandbox client.
func New(cfg Config) (*Sandbox, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("sandbox: runtime URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.TimeoutOverhead <= 0 {
		cfg.TimeoutOverhead = DefaultTimeoutOverhead
	}
	if cfg.Limits.MemoryBytes == 0 {
		cfg.Limits.MemoryBytes = DefaultMemoryBytes
	}
	if cfg.Limits.PidsMax == 0 {
		cfg.Limits.PidsMax = DefaultPidsMax
	}

	return &Sandbox{
		client:   &http.Client{},
		url:      cfg.URL,
		token:    cfg.Token,
		timeout:  cfg.Timeout,
		overhead: cfg.TimeoutOverhead,
		limits:   cfg.Limits,
		limiter:  ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RequestsPerSecond}),
	}, nil
}

// Execute runs code on the runtime. A runtime-reported failure is returned
// as an error wrapping ErrExecutionFailed.
func (s *Sandbox) Execute(ctx context.Context, req driven.SandboxRequest) (*driven.SandboxResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	language := req.Language
	if language == "" {
		language = "python"
	}

	body, err := json.Marshal(executeRequest{Request: executePayload{
		Language:      language,
		Code:          req.Code,
		TimeoutMillis: timeout.Milliseconds(),
		Limits:        s.limits,
	}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sandbox: rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+s.overhead)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()
	s.limiter.Observe(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out executeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: runtime returned status %d: %s", ErrConnectionFailed, resp.StatusCode, string(raw))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrExecutionFailed, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: runtime returned status %d", ErrConnectionFailed, resp.StatusCode)
	}
	if out.Result == nil {
		return nil, fmt.Errorf("%w: missing result", ErrExecutionFailed)
	}

	result := &driven.SandboxResult{
		Stdout:   out.Result.Stdout,
		Stderr:   out.Result.Stderr,
		Value:    out.Result.Value,
		Duration: time.Duration(out.Result.DurationMillis) * time.Millisecond,
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	return result, nil
}
