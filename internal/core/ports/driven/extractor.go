package driven

import "context"

// TextExtractor turns an uploaded file into plain text for chunking.
// Implementations pick the format from the filename extension.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}
