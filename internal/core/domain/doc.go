// Package domain defines the core business entities for ragent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document, Chunk: ingested text and its indexable segments
//   - SearchResult: a ranked retrieval hit
//   - Message, ContentBlock, Step: the agent conversation and its audit trail
//   - ToolDefinition: a tool advertised to the model
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
