package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts containing a keyword from vectors get that vector; everything
// else gets fallback.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	batches  int
	calls    [][]string
}

func newMockEmbedding() *mockEmbeddingService {
	return &mockEmbeddingService{
		vectors:  map[string][]float32{},
		fallback: []float32{0.5, 0.5, 0},
	}
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	for kw, v := range m.vectors {
		if strings.Contains(strings.ToLower(text), kw) {
			return v
		}
	}
	return m.fallback
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches++
	m.calls = append(m.calls, texts)
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return 3 }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// failingVectorIndex implements driven.VectorIndex and fails every call.
type failingVectorIndex struct {
	err error
}

func (f *failingVectorIndex) Upsert(context.Context, string, []driven.VectorRecord) error {
	return f.err
}

func (f *failingVectorIndex) Query(
	context.Context, string, []float32, int, domain.Filter,
) (*driven.QueryResult, error) {
	return nil, f.err
}

func (f *failingVectorIndex) DeleteWhere(context.Context, string, domain.Filter) (int, error) {
	return 0, f.err
}

func (f *failingVectorIndex) Partitions(context.Context) ([]string, error) { return nil, f.err }
func (f *failingVectorIndex) Count(context.Context, string) (int, error)   { return 0, f.err }
func (f *failingVectorIndex) Ping(context.Context) error                   { return f.err }
func (f *failingVectorIndex) Close() error                                 { return nil }

// mockLLMService implements driven.LLMService with scripted responses.
// Each Generate call pops the next response; requests are recorded with
// a deep copy of their message history.
type mockLLMService struct {
	mu        sync.Mutex
	responses []*driven.GenerationResponse
	errAt     int // 1-based call number that fails; 0 never fails
	err       error
	requests  []driven.GenerationRequest
}

func (m *mockLLMService) Generate(_ context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := req
	snapshot.Messages = append([]domain.Message(nil), req.Messages...)
	m.requests = append(m.requests, snapshot)

	call := len(m.requests)
	if m.errAt != 0 && call == m.errAt {
		return nil, m.err
	}
	if call > len(m.responses) {
		return nil, errors.New("mock: no scripted response")
	}
	return m.responses[call-1], nil
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

// textResponse builds a final answer with no tool calls.
func textResponse(text string, in, out int) *driven.GenerationResponse {
	return &driven.GenerationResponse{
		Text:       text,
		Content:    []domain.ContentBlock{domain.TextBlock(text)},
		StopReason: domain.StopEndTurn,
		Usage:      domain.Usage{InputTokens: in, OutputTokens: out},
		Model:      "mock-llm",
	}
}

// toolResponse builds a reply with optional leading text and tool calls.
func toolResponse(text string, stop domain.StopReason, in, out int, calls ...domain.ToolCall) *driven.GenerationResponse {
	resp := &driven.GenerationResponse{
		Text:       text,
		ToolCalls:  calls,
		StopReason: stop,
		Usage:      domain.Usage{InputTokens: in, OutputTokens: out},
		Model:      "mock-llm",
	}
	if text != "" {
		resp.Content = append(resp.Content, domain.TextBlock(text))
	}
	for _, c := range calls {
		resp.Content = append(resp.Content, domain.ToolUseBlock(c))
	}
	return resp
}

// mockSandbox implements driven.CodeSandbox for testing.
type mockSandbox struct {
	result *driven.SandboxResult
	err    error
	last   driven.SandboxRequest
}

func (m *mockSandbox) Execute(_ context.Context, req driven.SandboxRequest) (*driven.SandboxResult, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	err error
}

func (m *mockExtractor) Extract(_ context.Context, content []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return string(content), nil
}
