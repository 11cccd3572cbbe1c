// Package services holds ragent's core: the retriever, context assembly,
// the tool table, the agent loop, the RAG query path, document ingestion,
// readiness tracking and settings. Services depend only on domain and the
// port interfaces.
package services
