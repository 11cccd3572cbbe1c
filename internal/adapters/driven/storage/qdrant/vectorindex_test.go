package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

type fakePoint struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// fakeQdrant implements the REST endpoints the adapter uses.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]map[string]fakePoint
	dims        map[string]int
	apiKeys     []string
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{
		collections: make(map[string]map[string]fakePoint),
		dims:        make(map[string]int),
	}
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("api-key"))

	if r.URL.Path == "/readyz" {
		return
	}
	if r.URL.Path == "/collections" {
		var cols []map[string]string
		for name := range f.collections {
			cols = append(cols, map[string]string{"name": name})
		}
		writeResult(w, map[string]any{"collections": cols})
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/collections/"), "/")
	name := parts[0]
	points, exists := f.collections[name]
	action := strings.Join(parts[1:], "/")

	if action == "" && r.Method == http.MethodPut {
		var body struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.collections[name] = make(map[string]fakePoint)
		f.dims[name] = body.Vectors.Size
		writeResult(w, true)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":{"error":"Not found: Collection doesn't exist"}}`))
		return
	}

	var body struct {
		Points []fakePoint     `json:"points"`
		Vector []float64       `json:"vector"`
		Limit  int             `json:"limit"`
		Filter json.RawMessage `json:"filter"`
	}
	if r.Method != http.MethodGet {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch action {
	case "":
		writeResult(w, map[string]any{"status": "green"})
	case "points":
		for _, p := range body.Points {
			points[p.ID] = p
		}
		writeResult(w, map[string]any{"status": "completed"})
	case "points/search":
		type hit struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		}
		var hits []hit
		for _, p := range points {
			if matches(body.Filter, p.Payload) {
				hits = append(hits, hit{Score: dot(body.Vector, p.Vector), Payload: p.Payload})
			}
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
		if len(hits) > body.Limit {
			hits = hits[:body.Limit]
		}
		writeResult(w, hits)
	case "points/count":
		n := 0
		for _, p := range points {
			if matches(body.Filter, p.Payload) {
				n++
			}
		}
		writeResult(w, map[string]int{"count": n})
	case "points/delete":
		for id, p := range points {
			if matches(body.Filter, p.Payload) {
				delete(points, id)
			}
		}
		writeResult(w, map[string]any{"status": "completed"})
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func writeResult(w http.ResponseWriter, result any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok"})
}

func matches(raw json.RawMessage, payload map[string]any) bool {
	if len(raw) == 0 {
		return true
	}
	var filter struct {
		Must []struct {
			Key   string `json:"key"`
			Match struct {
				Value any `json:"value"`
			} `json:"match"`
		} `json:"must"`
	}
	_ = json.Unmarshal(raw, &filter)
	for _, c := range filter.Must {
		if fmt.Sprint(payload[c.Key]) != fmt.Sprint(c.Match.Value) {
			return false
		}
	}
	return true
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		if i < len(b) {
			s += a[i] * b[i]
		}
	}
	return s
}

func newTestIndex(t *testing.T) (*VectorIndex, *fakeQdrant) {
	t.Helper()
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	idx, err := NewVectorIndex(Config{URL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)
	return idx, fake
}

func seed(t *testing.T, idx *VectorIndex) {
	t.Helper()
	err := idx.Upsert(context.Background(), "kb", []driven.VectorRecord{
		{ID: "d1_chunk_0", Vector: []float32{1, 0}, Text: "alpha", Metadata: map[string]any{"document_id": "d1", "chunk_index": 0}},
		{ID: "d1_chunk_1", Vector: []float32{0.8, 0.6}, Text: "beta", Metadata: map[string]any{"document_id": "d1", "chunk_index": 1}},
		{ID: "d2_chunk_0", Vector: []float32{0, 1}, Text: "gamma", Metadata: map[string]any{"document_id": "d2", "chunk_index": 0}},
	})
	require.NoError(t, err)
}

func TestNewVectorIndex_RequiresURL(t *testing.T) {
	_, err := NewVectorIndex(Config{})
	assert.Error(t, err)
}

func TestUpsert_CreatesCollection(t *testing.T) {
	idx, fake := newTestIndex(t)
	seed(t, idx)

	require.Contains(t, fake.collections, "ragent_kb")
	assert.Equal(t, 2, fake.dims["ragent_kb"])
	assert.Len(t, fake.collections["ragent_kb"], 3)
	for _, key := range fake.apiKeys {
		assert.Equal(t, "secret", key)
	}

	p, ok := fake.collections["ragent_kb"][pointID("kb", "d1_chunk_0")]
	require.True(t, ok)
	assert.Equal(t, "d1_chunk_0", p.Payload[payloadIDKey])
	assert.Equal(t, "alpha", p.Payload[payloadTextKey])
}

func TestQuery_ConvertsScoreToDistance(t *testing.T) {
	idx, _ := newTestIndex(t)
	seed(t, idx)

	res, err := idx.Query(context.Background(), "kb", []float32{1, 0}, 2, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"d1_chunk_0", "d1_chunk_1"}, res.IDs)
	assert.Equal(t, []string{"alpha", "beta"}, res.Documents)
	assert.InDelta(t, 0, res.Distances[0], 1e-6)
	assert.InDelta(t, 0.2, res.Distances[1], 1e-6)
	assert.NotContains(t, res.Metadatas[0], payloadIDKey)
	assert.Equal(t, "d1", res.Metadatas[0]["document_id"])
}

func TestQuery_Filter(t *testing.T) {
	idx, _ := newTestIndex(t)
	seed(t, idx)

	res, err := idx.Query(context.Background(), "kb", []float32{1, 0}, 5, domain.Filter{"document_id": "d2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"d2_chunk_0"}, res.IDs)
}

func TestQuery_UnknownPartition(t *testing.T) {
	idx, _ := newTestIndex(t)

	res, err := idx.Query(context.Background(), "missing", []float32{1, 0}, 5, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}

func TestDeleteWhere(t *testing.T) {
	idx, _ := newTestIndex(t)
	seed(t, idx)
	ctx := context.Background()

	n, err := idx.DeleteWhere(ctx, "kb", domain.Filter{"document_id": "d1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := idx.Count(ctx, "kb")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	n, err = idx.DeleteWhere(ctx, "missing", domain.Filter{"document_id": "d1"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPartitions_StripsPrefix(t *testing.T) {
	idx, fake := newTestIndex(t)
	seed(t, idx)
	fake.collections["other_collection"] = map[string]fakePoint{}

	names, err := idx.Partitions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"kb"}, names)
}

func TestPing(t *testing.T) {
	idx, _ := newTestIndex(t)
	assert.NoError(t, idx.Ping(context.Background()))
}

func TestTranslateFilter(t *testing.T) {
	got := translateFilter(domain.Filter{"b": 2.0, "a": "x", "c": 1.5, "d": true})

	must := got["must"].([]any)
	require.Len(t, must, 4)
	assert.Equal(t, map[string]any{"key": "a", "match": map[string]any{"value": "x"}}, must[0])
	assert.Equal(t, map[string]any{"key": "b", "match": map[string]any{"value": int64(2)}}, must[1])
	assert.Equal(t, map[string]any{"key": "c", "range": map[string]any{"gte": 1.5, "lte": 1.5}}, must[2])
	assert.Equal(t, map[string]any{"key": "d", "match": map[string]any{"value": true}}, must[3])
}

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, pointID("kb", "x"), pointID("kb", "x"))
	assert.NotEqual(t, pointID("kb", "x"), pointID("other", "x"))
}
