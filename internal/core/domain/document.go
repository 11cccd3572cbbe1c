package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultKnowledgeBase is the partition used when none is given.
const DefaultKnowledgeBase = "default"

// Well-known chunk metadata keys.
const (
	MetaSource     = "source"
	MetaType       = "type"
	MetaChunkIndex = "chunk_index"
	MetaDocumentID = "document_id"
)

// UnknownFileType is reported for filenames without an extension.
const UnknownFileType = "unknown"

// Chunk is one bounded segment of a document, the unit of indexing.
// Ordinals are dense and zero-based within a document.
type Chunk struct {
	Text     string         `json:"text"`
	Ordinal  int            `json:"ordinal"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Document is an ingested source split into chunks.
// It has no stored identity beyond the chunk records that carry its ID.
type Document struct {
	ID              string  `json:"id"`
	KnowledgeBaseID string  `json:"knowledge_base_id"`
	Chunks          []Chunk `json:"chunks"`
}

// ChunkIDs returns the synthesized record IDs for every chunk.
func (d *Document) ChunkIDs() []string {
	ids := make([]string, len(d.Chunks))
	for i := range d.Chunks {
		ids[i] = ChunkID(d.ID, d.Chunks[i].Ordinal)
	}
	return ids
}

// ChunkID synthesizes the index record ID for a chunk of a document.
func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, ordinal)
}

// KnowledgeBase is a named partition of the index.
type KnowledgeBase struct {
	ID            string `json:"id"`
	DocumentCount int    `json:"document_count"`
}

// UploadResult reports the outcome of ingesting one document.
type UploadResult struct {
	DocumentID      string `json:"document_id"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	ChunksCreated   int    `json:"chunks_created"`
	Status          string `json:"status"`
}

// UploadStatusSuccess is the status reported for a completed upload.
const UploadStatusSuccess = "success"

// FileUpload is raw file content awaiting extraction.
type FileUpload struct {
	Filename string
	Content  []byte
	Metadata map[string]any
}

// FileType returns the lowercased extension of filename without the dot,
// or UnknownFileType when there is none.
func FileType(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" || ext == "." {
		return UnknownFileType
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// KnowledgeBaseOrDefault returns id, or DefaultKnowledgeBase when empty.
func KnowledgeBaseOrDefault(id string) string {
	if strings.TrimSpace(id) == "" {
		return DefaultKnowledgeBase
	}
	return id
}

// CopyMetadata returns a shallow copy of m; never nil.
func CopyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}
