package mcp

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// mockToolService is a mock implementation of driving.ToolService.
type mockToolService struct {
	defs    []domain.ToolDefinition
	result  map[string]any
	gotName string
	gotArgs map[string]any
	gotKB   string
}

func (m *mockToolService) ListTools() []domain.ToolDefinition { return m.defs }

func (m *mockToolService) Definitions(_ []string) []domain.ToolDefinition { return m.defs }

func (m *mockToolService) Invoke(_ context.Context, name string, params map[string]any, kb string) map[string]any {
	m.gotName = name
	m.gotArgs = params
	m.gotKB = kb
	return m.result
}

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	answer *domain.RAGAnswer
	got    domain.RAGQuery
	err    error
}

func (m *mockRAGService) Query(_ context.Context, q domain.RAGQuery) (*domain.RAGAnswer, error) {
	m.got = q
	return m.answer, m.err
}

// mockAgentService is a mock implementation of driving.AgentService.
type mockAgentService struct {
	result *domain.TaskResult
	got    domain.TaskRequest
	err    error
}

func (m *mockAgentService) Execute(_ context.Context, req domain.TaskRequest) (*domain.TaskResult, error) {
	m.got = req
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	kbs []domain.KnowledgeBase
	err error
}

func (m *mockDocumentService) UploadFile(_ context.Context, _ domain.FileUpload, _ string) (*domain.UploadResult, error) {
	return nil, m.err
}

func (m *mockDocumentService) AddText(_ context.Context, _, _ string, _ map[string]any) (*domain.UploadResult, error) {
	return nil, m.err
}

func (m *mockDocumentService) BatchUpload(_ context.Context, _ []domain.FileUpload, _ string) ([]domain.UploadResult, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _, _ string) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) List(_ context.Context, kb string, _ int) ([]domain.KnowledgeBase, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.KnowledgeBase{{ID: kb, DocumentCount: 4}}, nil
}

func (m *mockDocumentService) KnowledgeBases(_ context.Context) ([]domain.KnowledgeBase, error) {
	return m.kbs, m.err
}

func searchToolDef() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        domain.ToolSearchKnowledgeBase,
		Description: "Search the knowledge base",
		InputSchema: domain.ObjectSchema(map[string]domain.Property{
			"query": {Type: "string", Description: "search query"},
			"top_k": {Type: "integer", Default: 5},
		}, "query"),
	}
}
