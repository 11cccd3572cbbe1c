// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorIndex: Partitioned vector storage and nearest-neighbour queries
//   - EmbeddingService: Turns chunk and query text into vectors
//   - LLMService: Generation with tool use, used by the agent and RAG paths
//   - TextExtractor: Turns uploaded files into plain text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CodeSandbox: Executes python_repl code. Without it the tool reports an error result.
//   - WebSearcher: Backs web_search. Without it the tool reports it is not implemented.
//   - EmbeddingCache: Skips repeat embedding calls for identical text.
//   - PromptStore: User-editable prompt templates. Without it built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
