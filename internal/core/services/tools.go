package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure ToolService implements the interface.
var _ driving.ToolService = (*ToolService)(nil)

// ToolHandler executes one tool. defaultKB is the knowledge base of the
// surrounding task, used when params omit one.
type ToolHandler func(ctx context.Context, params map[string]any, defaultKB string) (map[string]any, error)

// registeredTool pairs a definition with its compiled schema and handler.
type registeredTool struct {
	def     domain.ToolDefinition
	schema  *jsonschema.Resolved
	handler ToolHandler
}

// ToolService is the table of callable tools, keyed by name.
// Parameters are validated against each tool's input schema before the
// handler runs. Every failure is returned as an {"error": ...} result.
type ToolService struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewToolService creates an empty tool table.
func NewToolService() *ToolService {
	return &ToolService{tools: make(map[string]registeredTool)}
}

// Register adds or replaces a tool. The input schema must compile.
func (s *ToolService) Register(def domain.ToolDefinition, handler ToolHandler) error {
	if def.Name == "" {
		return fmt.Errorf("%w: tool name is required", domain.ErrInvalidInput)
	}
	if handler == nil {
		return fmt.Errorf("%w: tool %s has no handler", domain.ErrInvalidInput, def.Name)
	}

	resolved, err := compileSchema(def.InputSchema)
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", def.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[def.Name] = registeredTool{def: def, schema: resolved, handler: handler}
	return nil
}

// ListTools returns every tool definition, sorted by name.
func (s *ToolService) ListTools() []domain.ToolDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]domain.ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, t.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Definitions returns definitions for names in the given order, or all
// tools when names is empty. Unknown names are skipped.
func (s *ToolService) Definitions(names []string) []domain.ToolDefinition {
	if len(names) == 0 {
		return s.ListTools()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]domain.ToolDefinition, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		t, ok := s.tools[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		defs = append(defs, t.def)
	}
	return defs
}

// Invoke validates params and runs the named tool.
func (s *ToolService) Invoke(
	ctx context.Context, name string, params map[string]any, defaultKnowledgeBase string,
) map[string]any {
	s.mu.RLock()
	t, ok := s.tools[name]
	s.mu.RUnlock()
	if !ok {
		logger.Warn("Unknown tool requested: %s", name)
		return domain.ToolError("Unknown tool: " + name)
	}

	if params == nil {
		params = map[string]any{}
	}
	if err := t.schema.Validate(params); err != nil {
		logger.Debug("Tool %s rejected parameters: %v", name, err)
		return domain.ToolError(fmt.Sprintf("Invalid parameters for %s: %v", name, err))
	}

	start := time.Now()
	result, err := t.handler(ctx, params, domain.KnowledgeBaseOrDefault(defaultKnowledgeBase))
	logger.Debug("Tool %s finished in %s", name, time.Since(start).Round(time.Millisecond))
	if err != nil {
		logger.Debug("Tool %s failed: %v", name, err)
		return domain.ToolError(err.Error())
	}
	if result == nil {
		result = map[string]any{}
	}
	return result
}

// compileSchema converts a tool input schema into a resolved JSON Schema.
func compileSchema(in domain.InputSchema) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return schema.Resolve(nil)
}

// BuiltinToolDeps are the collaborators of the built-in tools.
// A nil Sandbox or WebSearcher makes the matching tool report an error.
type BuiltinToolDeps struct {
	Retriever      driving.Retriever
	Sandbox        driven.CodeSandbox
	SandboxTimeout time.Duration
	WebSearcher    driven.WebSearcher
}

// Built-in tool descriptions shown to the model.
const (
	searchKnowledgeBaseDescription = "Search the knowledge base for relevant information. " +
		"Use this when you need to find specific information from documents."
	pythonREPLDescription = "Execute Python code. Use this for calculations, data processing, " +
		"or any computational tasks. The code runs in a safe sandboxed environment."
	webSearchDescription = "Search the web for current information. " +
		"Use this when you need up-to-date information not in the knowledge base."
)

// pythonNoOutput is reported when code ran but produced nothing.
const pythonNoOutput = "Code executed successfully"

// BuiltinToolDefinitions returns the definitions of the default tools.
func BuiltinToolDefinitions() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        domain.ToolSearchKnowledgeBase,
			Description: searchKnowledgeBaseDescription,
			InputSchema: domain.ObjectSchema(map[string]domain.Property{
				"query": {
					Type:        "string",
					Description: "The search query",
				},
				"knowledge_base_id": {
					Type:        "string",
					Description: "ID of the knowledge base to search",
				},
				"top_k": {
					Type:        "integer",
					Description: "Number of results to return",
					Default:     domain.DefaultTopK,
				},
			}, "query"),
		},
		{
			Name:        domain.ToolPythonREPL,
			Description: pythonREPLDescription,
			InputSchema: domain.ObjectSchema(map[string]domain.Property{
				"code": {
					Type:        "string",
					Description: "Python code to execute",
				},
			}, "code"),
		},
		{
			Name:        domain.ToolWebSearch,
			Description: webSearchDescription,
			InputSchema: domain.ObjectSchema(map[string]domain.Property{
				"query": {
					Type:        "string",
					Description: "The search query",
				},
			}, "query"),
		},
	}
}

// NewBuiltinToolService creates a tool table holding search_knowledge_base,
// python_repl and web_search.
func NewBuiltinToolService(deps BuiltinToolDeps) (*ToolService, error) {
	s := NewToolService()
	handlers := map[string]ToolHandler{
		domain.ToolSearchKnowledgeBase: searchKnowledgeBaseHandler(deps.Retriever),
		domain.ToolPythonREPL:          pythonREPLHandler(deps.Sandbox, deps.SandboxTimeout),
		domain.ToolWebSearch:           webSearchHandler(deps.WebSearcher),
	}
	for _, def := range BuiltinToolDefinitions() {
		if err := s.Register(def, handlers[def.Name]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func searchKnowledgeBaseHandler(retriever driving.Retriever) ToolHandler {
	return func(ctx context.Context, params map[string]any, defaultKB string) (map[string]any, error) {
		if retriever == nil {
			return nil, domain.ErrVectorIndexUnavailable
		}

		kb := stringParam(params, "knowledge_base_id")
		if kb == "" {
			kb = defaultKB
		}
		topK := domain.DefaultTopK
		if v, ok := intParam(params, "top_k"); ok {
			topK = v
		}

		hits, err := retriever.Search(ctx, domain.SearchRequest{
			Query:           stringParam(params, "query"),
			KnowledgeBaseID: kb,
			TopK:            topK,
		})
		if err != nil {
			return nil, err
		}

		results := make([]any, 0, len(hits))
		for _, h := range hits {
			results = append(results, map[string]any{
				"content":  h.Content,
				"score":    h.Score,
				"metadata": h.Metadata,
			})
		}
		return map[string]any{"results": results}, nil
	}
}

func pythonREPLHandler(sandbox driven.CodeSandbox, timeout time.Duration) ToolHandler {
	return func(ctx context.Context, params map[string]any, _ string) (map[string]any, error) {
		if sandbox == nil {
			return nil, domain.ErrSandboxUnavailable
		}

		res, err := sandbox.Execute(ctx, driven.SandboxRequest{
			Language: "python",
			Code:     stringParam(params, "code"),
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}

		out := map[string]any{"output": pythonOutput(res)}
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			out["stderr"] = res.Stderr
		}
		return out, nil
	}
}

// pythonOutput prefers the evaluated value, then stdout.
func pythonOutput(res *driven.SandboxResult) string {
	if res == nil {
		return pythonNoOutput
	}
	if res.Value != nil {
		return fmt.Sprint(res.Value)
	}
	if s := strings.TrimRight(res.Stdout, "\n"); s != "" {
		return s
	}
	return pythonNoOutput
}

func webSearchHandler(searcher driven.WebSearcher) ToolHandler {
	return func(ctx context.Context, params map[string]any, _ string) (map[string]any, error) {
		if searcher == nil {
			return nil, errors.New("web search not configured")
		}
		return searcher.Search(ctx, stringParam(params, "query"))
	}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// intParam reads an integer parameter, accepting JSON-decoded float64.
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}
