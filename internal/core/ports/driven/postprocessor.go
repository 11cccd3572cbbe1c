package driven

import "github.com/custodia-labs/ragent/internal/core/domain"

// Chunker splits extracted document text into indexable chunks.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits text into chunks with dense zero-based ordinals.
	// Each chunk carries a copy of metadata plus its chunk_index.
	// Empty or whitespace-only text yields no chunks.
	Chunk(text string, metadata map[string]any) []domain.Chunk
}
