// Package plaintext provides a Normaliser for text formats that are
// indexed verbatim: plain text, Markdown and CSV.
package plaintext

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/normalisers/decode"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"txt", "text", "md", "markdown", "csv", "log"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise decodes the content unchanged apart from byte order marks.
// Markdown keeps its formatting and CSV keeps its rows so the chunker
// sees the original text.
func (n *Normaliser) Normalise(_ context.Context, content []byte, _ string) (string, error) {
	return decode.Text(content), nil
}
