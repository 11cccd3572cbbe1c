package postprocessors

import (
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/postprocessors/chunker"
)

// Setting keys read by the built-in chunker.
const (
	KeyChunkSize = "chunk_size"
	KeyOverlap   = "overlap"
)

// DefaultChunker is the strategy used when none is configured.
const DefaultChunker = "chunker"

// RegisterDefaults registers the built-in chunkers.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultChunker, buildChunker)
}

// buildChunker applies chunk_size and overlap when present; absent keys
// keep the chunker's defaults.
func buildChunker(cfg driven.ConfigReader) (driven.Chunker, error) {
	if cfg == nil {
		return chunker.New()
	}
	var opts []chunker.Option
	if _, ok := cfg.Get(KeyChunkSize); ok {
		opts = append(opts, chunker.WithChunkSize(cfg.GetInt(KeyChunkSize)))
	}
	if _, ok := cfg.Get(KeyOverlap); ok {
		opts = append(opts, chunker.WithOverlap(cfg.GetInt(KeyOverlap)))
	}
	return chunker.New(opts...)
}
