package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Queries are brute-force cosine scans; contents are lost on exit.
type VectorIndex struct {
	mu         sync.RWMutex
	partitions map[string]*partition
}

// partition keeps records in insertion order with an id lookup.
type partition struct {
	records []driven.VectorRecord
	byID    map[string]int
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		partitions: make(map[string]*partition),
	}
}

// Upsert writes records, replacing any with the same ID.
func (v *VectorIndex) Upsert(_ context.Context, name string, records []driven.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.partitions[name]
	if !ok {
		p = &partition{byID: make(map[string]int)}
		v.partitions[name] = p
	}

	for _, r := range records {
		stored := driven.VectorRecord{
			ID:       r.ID,
			Vector:   append([]float32(nil), r.Vector...),
			Text:     r.Text,
			Metadata: domain.CopyMetadata(r.Metadata),
		}
		if i, exists := p.byID[r.ID]; exists {
			p.records[i] = stored
			continue
		}
		p.byID[r.ID] = len(p.records)
		p.records = append(p.records, stored)
	}
	return nil
}

// Query returns the k nearest records matching filter.
// An unknown partition yields an empty result.
func (v *VectorIndex) Query(
	_ context.Context, name string, vector []float32, k int, filter domain.Filter,
) (*driven.QueryResult, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	result := &driven.QueryResult{}
	p, ok := v.partitions[name]
	if !ok {
		return result, nil
	}

	candidates := make([]similarity.Candidate, 0, len(p.records))
	for i, r := range p.records {
		if !filter.Matches(r.Metadata) {
			continue
		}
		candidates = append(candidates, similarity.Candidate{
			Index:    i,
			Distance: similarity.CosineDistance(vector, r.Vector),
		})
	}

	for _, c := range similarity.TopK(candidates, k) {
		r := p.records[c.Index]
		result.IDs = append(result.IDs, r.ID)
		result.Documents = append(result.Documents, r.Text)
		result.Metadatas = append(result.Metadatas, domain.CopyMetadata(r.Metadata))
		result.Distances = append(result.Distances, c.Distance)
	}
	return result, nil
}

// DeleteWhere removes matching records and returns how many were removed.
func (v *VectorIndex) DeleteWhere(_ context.Context, name string, filter domain.Filter) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.partitions[name]
	if !ok {
		return 0, nil
	}

	kept := p.records[:0]
	removed := 0
	for _, r := range p.records {
		if filter.Matches(r.Metadata) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	p.records = kept
	p.byID = make(map[string]int, len(kept))
	for i, r := range kept {
		p.byID[r.ID] = i
	}
	return removed, nil
}

// Partitions lists partition names in sorted order.
func (v *VectorIndex) Partitions(_ context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	names := make([]string, 0, len(v.partitions))
	for name := range v.partitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of records in a partition.
func (v *VectorIndex) Count(_ context.Context, name string) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if p, ok := v.partitions[name]; ok {
		return len(p.records), nil
	}
	return 0, nil
}

// Ping always succeeds.
func (v *VectorIndex) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
