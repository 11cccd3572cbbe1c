package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultBatchConcurrency bounds parallel extractions in BatchUpload.
const DefaultBatchConcurrency = 4

// DefaultListLimit is the list page size used when none is given.
const DefaultListLimit = 100

// textDocumentType is the type recorded for text added directly.
const textDocumentType = "text"

// DocumentService ingests documents into knowledge bases.
// A document is extracted to text, chunked, and each chunk is indexed
// under "{document_id}_chunk_{n}" with document_id in its metadata.
type DocumentService struct {
	extractor   driven.TextExtractor
	chunker     driven.Chunker
	retriever   driving.Retriever
	concurrency int
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	extractor driven.TextExtractor,
	chunker driven.Chunker,
	retriever driving.Retriever,
) *DocumentService {
	return &DocumentService{
		extractor:   extractor,
		chunker:     chunker,
		retriever:   retriever,
		concurrency: DefaultBatchConcurrency,
	}
}

// SetConcurrency sets how many files BatchUpload processes at once.
func (s *DocumentService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// UploadFile extracts text by file extension, then chunks and indexes it.
// Metadata gains source (the filename) and type (the extension).
func (s *DocumentService) UploadFile(
	ctx context.Context, file domain.FileUpload, knowledgeBaseID string,
) (*domain.UploadResult, error) {
	if strings.TrimSpace(file.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if s.extractor == nil {
		return nil, domain.ErrNotImplemented
	}

	text, err := s.extractor.Extract(ctx, file.Content, file.Filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", file.Filename, err)
	}

	meta := domain.CopyMetadata(file.Metadata)
	meta[domain.MetaSource] = file.Filename
	meta[domain.MetaType] = domain.FileType(file.Filename)

	logger.Debug("Extracted %d bytes of text from %s", len(text), file.Filename)
	return s.ingest(ctx, text, knowledgeBaseID, meta)
}

// AddText chunks and indexes raw text. Metadata type is set to "text".
func (s *DocumentService) AddText(
	ctx context.Context, content, knowledgeBaseID string, metadata map[string]any,
) (*domain.UploadResult, error) {
	meta := domain.CopyMetadata(metadata)
	meta[domain.MetaType] = textDocumentType
	return s.ingest(ctx, content, knowledgeBaseID, meta)
}

// BatchUpload ingests files concurrently. Results keep input order.
// The first failure cancels the remaining uploads and is returned.
func (s *DocumentService) BatchUpload(
	ctx context.Context, files []domain.FileUpload, knowledgeBaseID string,
) ([]domain.UploadResult, error) {
	results := make([]domain.UploadResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, f := range files {
		g.Go(func() error {
			res, err := s.UploadFile(gctx, f, knowledgeBaseID)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Delete removes every chunk of a document and returns how many were removed.
func (s *DocumentService) Delete(ctx context.Context, documentID, knowledgeBaseID string) (int, error) {
	if s.retriever == nil {
		return 0, domain.ErrVectorIndexUnavailable
	}
	return s.retriever.DeleteDocument(ctx, documentID, knowledgeBaseID)
}

// List summarises one knowledge base as its stored chunk count.
func (s *DocumentService) List(ctx context.Context, knowledgeBaseID string, limit int) ([]domain.KnowledgeBase, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	if s.retriever == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	kb := domain.KnowledgeBaseOrDefault(knowledgeBaseID)
	n, err := s.retriever.Count(ctx, kb)
	if err != nil {
		return nil, err
	}
	return []domain.KnowledgeBase{{ID: kb, DocumentCount: n}}, nil
}

// KnowledgeBases summarises every knowledge base.
func (s *DocumentService) KnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error) {
	if s.retriever == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	ids, err := s.retriever.ListKnowledgeBases(ctx)
	if err != nil {
		return nil, err
	}

	kbs := make([]domain.KnowledgeBase, 0, len(ids))
	for _, id := range ids {
		n, err := s.retriever.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		kbs = append(kbs, domain.KnowledgeBase{ID: id, DocumentCount: n})
	}
	return kbs, nil
}

func (s *DocumentService) ingest(
	ctx context.Context, text, knowledgeBaseID string, meta map[string]any,
) (*domain.UploadResult, error) {
	if s.chunker == nil || s.retriever == nil {
		return nil, domain.ErrNotImplemented
	}

	kb := domain.KnowledgeBaseOrDefault(knowledgeBaseID)
	doc := domain.Document{
		ID:              uuid.NewString(),
		KnowledgeBaseID: kb,
	}
	meta[domain.MetaDocumentID] = doc.ID
	doc.Chunks = s.chunker.Chunk(text, meta)

	if _, err := s.retriever.Upsert(ctx, kb, doc.Chunks, doc.ChunkIDs()); err != nil {
		return nil, fmt.Errorf("index document %s: %w", doc.ID, err)
	}

	logger.Info("Indexed document %s into %s (%d chunks)", doc.ID, kb, len(doc.Chunks))
	return &domain.UploadResult{
		DocumentID:      doc.ID,
		KnowledgeBaseID: kb,
		ChunksCreated:   len(doc.Chunks),
		Status:          domain.UploadStatusSuccess,
	}, nil
}
