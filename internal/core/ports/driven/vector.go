package driven

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// VectorIndex stores embedded chunks in named partitions (knowledge bases)
// and answers nearest-neighbour queries with cosine distance.
// Implementations must tolerate concurrent reads and writes.
type VectorIndex interface {
	// Upsert writes records into the partition, creating it if absent.
	Upsert(ctx context.Context, partition string, records []VectorRecord) error

	// Query returns up to k nearest records, best match first.
	// A non-empty filter restricts matches to records whose metadata satisfies it.
	Query(ctx context.Context, partition string, vector []float32, k int, filter domain.Filter) (*QueryResult, error)

	// DeleteWhere removes every record in the partition whose metadata
	// satisfies filter, returning how many were removed.
	DeleteWhere(ctx context.Context, partition string, filter domain.Filter) (int, error)

	// Partitions lists the existing partitions.
	Partitions(ctx context.Context) ([]string, error)

	// Count returns the number of records in a partition.
	Count(ctx context.Context, partition string) (int, error)

	// Ping validates the index is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorRecord is one stored chunk.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// QueryResult holds parallel slices of length <= k, best match first.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]any
	Distances []float64
}

// Len returns the number of hits.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.IDs)
}
