// Package qdrant provides a driven.VectorIndex backed by a Qdrant server's
// REST API. Each partition is a collection named by prefix + partition.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultCollectionPrefix = "ragent_"
	DefaultTimeout          = 15 * time.Second
)

// Reserved payload keys. Qdrant point ids must be UUIDs or integers, so
// the record id is kept in the payload alongside the chunk text.
const (
	payloadIDKey   = "_ragent_id"
	payloadTextKey = "_ragent_text"

	maxErrorBodyBytes = 1024
)

var pointIDNamespace = uuid.MustParse("6f0f7a3e-9b7c-4c1e-8d2a-5b1e0c2f4a77")

// Config holds configuration for the Qdrant vector index.
type Config struct {
	// URL is the Qdrant REST endpoint, e.g. http://localhost:6333 (required).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// CollectionPrefix namespaces collections (default: ragent_).
	CollectionPrefix string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// VectorIndex stores partitions as Qdrant collections using cosine distance.
type VectorIndex struct {
	client  *http.Client
	baseURL string
	apiKey  string
	prefix  string

	mu    sync.Mutex
	known map[string]bool
}

// StatusError is a non-2xx Qdrant response.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("qdrant %s failed (status %d): %s", e.Operation, e.StatusCode, e.Message)
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type scoredPoint struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// NewVectorIndex creates a Qdrant-backed vector index.
func NewVectorIndex(cfg Config) (*VectorIndex, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("qdrant: URL is required")
	}
	if cfg.CollectionPrefix == "" {
		cfg.CollectionPrefix = DefaultCollectionPrefix
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorIndex{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		prefix:  cfg.CollectionPrefix,
		known:   make(map[string]bool),
	}, nil
}

// Upsert writes points, creating the collection from the first vector's
// dimension when it does not exist yet.
func (v *VectorIndex) Upsert(ctx context.Context, partition string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := v.ensureCollection(ctx, partition, len(records[0].Vector)); err != nil {
		return err
	}

	points := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
		}
		payload := domain.CopyMetadata(r.Metadata)
		payload[payloadIDKey] = r.ID
		payload[payloadTextKey] = r.Text
		points = append(points, map[string]any{
			"id":      pointID(partition, r.ID),
			"vector":  r.Vector,
			"payload": payload,
		})
	}

	req := map[string]any{"points": points}
	return v.doJSON(ctx, "upsert", http.MethodPut, v.collectionPath(partition, "/points?wait=true"), req, nil)
}

// Query runs a nearest-neighbour search. Qdrant reports cosine similarity,
// converted here to distance = 1 - similarity.
func (v *VectorIndex) Query(
	ctx context.Context, partition string, vector []float32, k int, filter domain.Filter,
) (*driven.QueryResult, error) {
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"with_vector":  false,
	}
	if len(filter) > 0 {
		req["filter"] = translateFilter(filter)
	}

	var points []scoredPoint
	err := v.doJSON(ctx, "query", http.MethodPost, v.collectionPath(partition, "/points/search"), req, &points)
	if isNotFound(err) {
		return &driven.QueryResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &driven.QueryResult{}
	for _, p := range points {
		id, _ := p.Payload[payloadIDKey].(string)
		text, _ := p.Payload[payloadTextKey].(string)
		result.IDs = append(result.IDs, id)
		result.Documents = append(result.Documents, text)
		result.Metadatas = append(result.Metadatas, stripReserved(p.Payload))
		result.Distances = append(result.Distances, 1-p.Score)
	}
	return result, nil
}

// DeleteWhere counts then deletes the points matching filter.
func (v *VectorIndex) DeleteWhere(ctx context.Context, partition string, filter domain.Filter) (int, error) {
	qf := translateFilter(filter)

	n, err := v.count(ctx, partition, qf)
	if err != nil || n == 0 {
		return 0, err
	}

	req := map[string]any{"filter": qf}
	if err := v.doJSON(ctx, "delete", http.MethodPost, v.collectionPath(partition, "/points/delete?wait=true"), req, nil); err != nil {
		return 0, err
	}
	logger.Debug("qdrant: deleted %d points from %s", n, partition)
	return n, nil
}

// Partitions lists collections carrying the configured prefix.
func (v *VectorIndex) Partitions(ctx context.Context) ([]string, error) {
	var result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := v.doJSON(ctx, "list_collections", http.MethodGet, "/collections", nil, &result); err != nil {
		return nil, err
	}

	var names []string
	for _, c := range result.Collections {
		if strings.HasPrefix(c.Name, v.prefix) {
			names = append(names, strings.TrimPrefix(c.Name, v.prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the exact number of points in a partition.
func (v *VectorIndex) Count(ctx context.Context, partition string) (int, error) {
	return v.count(ctx, partition, nil)
}

// Ping checks the server's readiness endpoint.
func (v *VectorIndex) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/readyz", http.NoBody)
	if err != nil {
		return fmt.Errorf("qdrant: failed to create ping request: %w", err)
	}
	v.authorize(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant: ready check returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	v.client.CloseIdleConnections()
	return nil
}

func (v *VectorIndex) count(ctx context.Context, partition string, filter map[string]any) (int, error) {
	req := map[string]any{"exact": true}
	if len(filter) > 0 {
		req["filter"] = filter
	}

	var result struct {
		Count int `json:"count"`
	}
	err := v.doJSON(ctx, "count", http.MethodPost, v.collectionPath(partition, "/points/count"), req, &result)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (v *VectorIndex) ensureCollection(ctx context.Context, partition string, dimensions int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.known[partition] {
		return nil
	}

	err := v.doJSON(ctx, "get_collection", http.MethodGet, v.collectionPath(partition, ""), nil, nil)
	switch {
	case err == nil:
	case isNotFound(err):
		if dimensions <= 0 {
			return fmt.Errorf("%w: cannot create collection for empty vectors", domain.ErrInvalidInput)
		}
		req := map[string]any{
			"vectors": map[string]any{
				"size":     dimensions,
				"distance": "Cosine",
			},
		}
		if err := v.doJSON(ctx, "create_collection", http.MethodPut, v.collectionPath(partition, ""), req, nil); err != nil {
			return err
		}
		logger.Info("qdrant: created collection %s%s (dim=%d)", v.prefix, partition, dimensions)
	default:
		return err
	}

	v.known[partition] = true
	return nil
}

func (v *VectorIndex) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("qdrant %s: encode request: %w", op, err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("qdrant %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	v.authorize(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("qdrant %s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Operation: op, StatusCode: resp.StatusCode, Message: truncateBody(raw)}
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("qdrant %s: decode envelope: %w", op, err)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("qdrant %s: decode result: %w", op, err)
	}
	return nil
}

func (v *VectorIndex) authorize(req *http.Request) {
	if v.apiKey != "" {
		req.Header.Set("api-key", v.apiKey)
	}
}

func (v *VectorIndex) collectionPath(partition, suffix string) string {
	return "/collections/" + v.prefix + partition + suffix
}

// pointID derives a stable UUID for a record within a partition.
func pointID(partition, id string) string {
	return uuid.NewSHA1(pointIDNamespace, []byte(partition+"|"+id)).String()
}

func isNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func stripReserved(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, val := range payload {
		if k == payloadIDKey || k == payloadTextKey {
			continue
		}
		out[k] = val
	}
	return out
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
