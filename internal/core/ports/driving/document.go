package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// DocumentService ingests, deletes and lists documents.
type DocumentService interface {
	// UploadFile extracts text from a file by extension, chunks and indexes it.
	UploadFile(ctx context.Context, file domain.FileUpload, knowledgeBaseID string) (*domain.UploadResult, error)

	// AddText chunks and indexes raw text.
	AddText(ctx context.Context, content, knowledgeBaseID string, metadata map[string]any) (*domain.UploadResult, error)

	// BatchUpload ingests several files concurrently. Results keep input order.
	BatchUpload(ctx context.Context, files []domain.FileUpload, knowledgeBaseID string) ([]domain.UploadResult, error)

	// Delete removes all chunks of a document.
	Delete(ctx context.Context, documentID, knowledgeBaseID string) (int, error)

	// List summarises the contents of a knowledge base.
	List(ctx context.Context, knowledgeBaseID string, limit int) ([]domain.KnowledgeBase, error)

	// KnowledgeBases summarises every knowledge base.
	KnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error)
}
