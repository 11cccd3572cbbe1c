// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Config configures the client. Every field is optional.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions is the expected vector size. Zero looks the model up and
	// otherwise adopts the size of the first vector returned.
	Dimensions int

	// KeepAlive is how long Ollama keeps the model loaded, e.g. "10m".
	KeepAlive string
}

// EmbeddingService calls POST /api/embed with the whole batch.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	keepAlive  string
	dimensions atomic.Int64
}

type embedRequest struct {
	Model     string   `json:"model"`
	Input     []string `json:"input"`
	Truncate  bool     `json:"truncate"`
	KeepAlive string   `json:"keep_alive,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService applies defaults to cfg.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[modelBase(cfg.Model)]
	}

	s := &EmbeddingService{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		keepAlive: cfg.KeepAlive,
	}
	s.dimensions.Store(int64(cfg.Dimensions))
	return s
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request. Inputs longer than the model's
// context are truncated by the server.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	req := embedRequest{Model: s.model, Input: texts, Truncate: true, KeepAlive: s.keepAlive}
	if err := s.post(ctx, "/api/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	if got := len(resp.Embeddings[0]); s.dimensions.CompareAndSwap(0, int64(got)) {
		logger.Debug("ollama: %s produces %d-dimensional vectors", s.model, got)
	}
	return resp.Embeddings, nil
}

// Dimensions returns the vector size, or DefaultDimensions before the
// first response for an unknown model.
func (s *EmbeddingService) Dimensions() int {
	if d := s.dimensions.Load(); d > 0 {
		return int(d)
	}
	return DefaultDimensions
}

// ModelName returns the configured model.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping asks the server about the model, which fails when it is not pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.post(ctx, "/api/show", map[string]string{"model": s.model}, nil)
}

// Close releases idle connections.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *EmbeddingService) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ollama: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ollama: read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("ollama: model %q not found, run 'ollama pull %s'", s.model, s.model)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: ollama returned %d: %s", domain.ErrEmbeddingUnavailable, resp.StatusCode, serverError(raw))
	case resp.StatusCode >= 300:
		return fmt.Errorf("ollama returned %d: %s", resp.StatusCode, serverError(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ollama: decode response: %w", err)
	}
	return nil
}

func serverError(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

// modelBase strips an Ollama tag, so "nomic-embed-text:latest" matches
// the dimension table.
func modelBase(model string) string {
	base, _, _ := strings.Cut(model, ":")
	return base
}
