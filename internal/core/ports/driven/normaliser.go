package driven

import "context"

// Normaliser turns the bytes of one file format into plain text.
// Each normaliser handles a set of file extensions (e.g. "pdf", "md").
type Normaliser interface {
	// Extensions returns the lowercase extensions this normaliser handles,
	// without the leading dot.
	Extensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts plain text from the file content.
	Normalise(ctx context.Context, content []byte, filename string) (string, error)
}
