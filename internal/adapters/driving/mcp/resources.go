package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for ragent resources.
	uriScheme = "ragent://"
)

// registerResources registers the knowledge base resources.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "knowledge-bases",
		Name:        "knowledge-bases",
		Description: "Knowledge bases and their chunk counts",
		MIMEType:    "application/json",
	}, s.handleKnowledgeBasesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "knowledge-bases/{knowledgeBaseId}",
		Name:        "knowledge-base",
		Description: "Summary of a single knowledge base",
		MIMEType:    "application/json",
	}, s.handleKnowledgeBaseResource)
}

func (s *Server) handleKnowledgeBasesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return jsonResource(req.Params.URI, []any{})
	}

	kbs, err := s.ports.Documents.KnowledgeBases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	return jsonResource(req.Params.URI, kbs)
}

func (s *Server) handleKnowledgeBaseResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractKnowledgeBaseID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	kbs, err := s.ports.Documents.List(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("describing knowledge base: %w", err)
	}
	if len(kbs) == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, kbs[0])
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractKnowledgeBaseID extracts the id from ragent://knowledge-bases/{id}.
func extractKnowledgeBaseID(uri string) string {
	const prefix = uriScheme + "knowledge-bases/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.Trim(strings.TrimPrefix(uri, prefix), "/")
}
