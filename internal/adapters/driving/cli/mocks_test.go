package cli

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

type mockRAGService struct {
	got domain.RAGQuery
	err error
}

func (m *mockRAGService) Query(_ context.Context, q domain.RAGQuery) (*domain.RAGAnswer, error) {
	m.got = q
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RAGAnswer{
		Answer:  "The refund window is 30 days.",
		Sources: []domain.SearchResult{testResult()},
		Usage:   domain.Usage{InputTokens: 50, OutputTokens: 12},
		Model:   "test-model",
	}, nil
}

type mockAgentService struct {
	got domain.TaskRequest
	err error
}

func (m *mockAgentService) Execute(_ context.Context, req domain.TaskRequest) (*domain.TaskResult, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.TaskResult{
		Result: "All done.",
		Steps: []domain.Step{{
			Iteration: 1,
			Thought:   "Let me search.",
			ToolUses: []domain.ToolUse{{
				Tool:   domain.ToolSearchKnowledgeBase,
				Input:  map[string]any{"query": "refunds"},
				Result: map[string]any{"results": []any{}},
			}},
		}},
		Usage:   domain.Usage{InputTokens: 100, OutputTokens: 20},
		Success: true,
	}, nil
}

type mockToolService struct {
	defs      []domain.ToolDefinition
	result    map[string]any
	gotName   string
	gotParams map[string]any
	gotKB     string
}

func (m *mockToolService) ListTools() []domain.ToolDefinition { return m.defs }

func (m *mockToolService) Definitions(names []string) []domain.ToolDefinition {
	var out []domain.ToolDefinition
	for _, d := range m.defs {
		for _, n := range names {
			if d.Name == n {
				out = append(out, d)
			}
		}
	}
	return out
}

func (m *mockToolService) Invoke(_ context.Context, name string, params map[string]any, kb string) map[string]any {
	m.gotName, m.gotParams, m.gotKB = name, params, kb
	return m.result
}

type mockDocumentService struct {
	uploaded []domain.FileUpload
	text     string
	metadata map[string]any
	deleted  string
	kb       string
}

func (m *mockDocumentService) UploadFile(_ context.Context, f domain.FileUpload, kb string) (*domain.UploadResult, error) {
	m.uploaded = append(m.uploaded, f)
	m.kb = kb
	return &domain.UploadResult{DocumentID: "doc-1", KnowledgeBaseID: kb, ChunksCreated: 3, Status: domain.UploadStatusSuccess}, nil
}

func (m *mockDocumentService) AddText(_ context.Context, content, kb string, metadata map[string]any) (*domain.UploadResult, error) {
	m.text, m.kb, m.metadata = content, kb, metadata
	return &domain.UploadResult{DocumentID: "doc-2", KnowledgeBaseID: kb, ChunksCreated: 1, Status: domain.UploadStatusSuccess}, nil
}

func (m *mockDocumentService) BatchUpload(_ context.Context, files []domain.FileUpload, kb string) ([]domain.UploadResult, error) {
	m.uploaded = append(m.uploaded, files...)
	m.kb = kb
	results := make([]domain.UploadResult, len(files))
	for i := range files {
		results[i] = domain.UploadResult{DocumentID: files[i].Filename, KnowledgeBaseID: kb, ChunksCreated: 1, Status: domain.UploadStatusSuccess}
	}
	return results, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id, kb string) (int, error) {
	m.deleted, m.kb = id, kb
	return 4, nil
}

func (m *mockDocumentService) List(_ context.Context, kb string, _ int) ([]domain.KnowledgeBase, error) {
	return []domain.KnowledgeBase{{ID: kb, DocumentCount: 7}}, nil
}

func (m *mockDocumentService) KnowledgeBases(context.Context) ([]domain.KnowledgeBase, error) {
	return []domain.KnowledgeBase{{ID: "default", DocumentCount: 7}, {ID: "legal", DocumentCount: 2}}, nil
}

type mockRetriever struct {
	got domain.SearchRequest
}

func (m *mockRetriever) Upsert(context.Context, string, []domain.Chunk, []string) ([]string, error) {
	return nil, nil
}

func (m *mockRetriever) Search(_ context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	m.got = req
	return []domain.SearchResult{testResult()}, nil
}

func (m *mockRetriever) DeleteDocument(context.Context, string, string) (int, error) { return 0, nil }
func (m *mockRetriever) ListKnowledgeBases(context.Context) ([]string, error)        { return nil, nil }
func (m *mockRetriever) Count(context.Context, string) (int, error)                  { return 0, nil }

type mockHealthService struct {
	components []domain.ComponentStatus
}

func (m *mockHealthService) Status() []domain.ComponentStatus { return m.components }

func (m *mockHealthService) Ready(name string) bool {
	for _, c := range m.components {
		if c.Name == name {
			return c.Ready()
		}
	}
	return false
}

func (m *mockHealthService) Healthy() bool {
	for _, c := range m.components {
		if !c.Ready() {
			return false
		}
	}
	return true
}

func testResult() domain.SearchResult {
	return domain.SearchResult{
		Content:  "Refunds are accepted within 30 days of purchase.",
		Metadata: map[string]any{domain.MetaSource: "policy.md", domain.MetaDocumentID: "doc-9"},
		Score:    0.87,
	}
}
