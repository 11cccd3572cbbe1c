// Package chunker splits document text into overlapping, boundary-aware chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into chunks of at most chunkSize characters,
// preferring to end a chunk on a sentence terminator or newline.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
// Non-positive values keep the default.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// Negative values keep the default.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a chunker. Returns domain.ErrInvalidInput unless size > overlap >= 0.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split scans text left to right. Each window is [start, start+size); when it
// does not reach the end of the text it is cut after the last '.' or '\n'
// if that break lies past the window midpoint. The next window starts
// overlap characters before the previous end. Chunks are trimmed and empty
// ones dropped. Lengths are counted in runes.
func (p *Processor) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	chunks := make([]string, 0, n/(p.chunkSize-p.overlap)+1)

	for start := 0; start < n; {
		end := start + p.chunkSize
		if end > n {
			end = n
		}
		window := runes[start:end]

		if end < n {
			bp := lastBreak(window)
			// The break must also leave room for the overlap, or the next
			// window would not advance.
			if bp > p.chunkSize/2 && bp+1 > p.overlap {
				window = window[:bp+1]
				end = start + bp + 1
			}
		}

		if chunk := strings.TrimSpace(string(window)); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= n {
			break
		}
		start = end - p.overlap
	}

	return chunks
}

// Chunk splits text and wraps each piece as a domain.Chunk with a dense,
// zero-based ordinal. Each chunk gets its own copy of metadata plus
// chunk_index.
func (p *Processor) Chunk(text string, metadata map[string]any) []domain.Chunk {
	pieces := p.Split(text)
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		meta := domain.CopyMetadata(metadata)
		meta[domain.MetaChunkIndex] = i
		chunks[i] = domain.Chunk{
			Text:     piece,
			Ordinal:  i,
			Metadata: meta,
		}
	}
	return chunks
}

// lastBreak returns the index of the last '.' or '\n' in window, or -1.
func lastBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
