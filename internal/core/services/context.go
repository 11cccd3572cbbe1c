package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// AssembleContext renders retrieval results as a numbered context block
// for a prompt. Each result becomes
//
//	[i] (Source: name)
//	content
//
// with i starting at 1 and the source suffix only when metadata has one.
// Parts are separated by a blank line. No results give an empty string.
func AssembleContext(results []domain.SearchResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "[%d]", i+1)
		if src, ok := r.Source(); ok {
			fmt.Fprintf(&b, " (Source: %s)", src)
		}
		b.WriteString("\n")
		b.WriteString(r.Content)
		b.WriteString("\n")
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}
