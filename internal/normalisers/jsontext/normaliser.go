// Package jsontext provides a Normaliser for JSON documents.
package jsontext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/normalisers/decode"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser re-indents JSON so each key lands on its own line.
type Normaliser struct{}

// New creates a new JSON normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"json"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise pretty-prints the document with two-space indentation.
// Key order is preserved. Malformed JSON is rejected.
func (n *Normaliser) Normalise(_ context.Context, content []byte, filename string) (string, error) {
	text := []byte(decode.Text(content))

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(text), "", "  "); err != nil {
		return "", fmt.Errorf("%w: %s is not valid JSON: %w", domain.ErrInvalidInput, filename, err)
	}
	return buf.String(), nil
}
