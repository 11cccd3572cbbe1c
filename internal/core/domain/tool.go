package domain

// Built-in tool names.
const (
	ToolSearchKnowledgeBase = "search_knowledge_base"
	ToolPythonREPL          = "python_repl"
	ToolWebSearch           = "web_search"
)

// ToolDefinition advertises a tool to the model.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// InputSchema is the JSON-schema object contract for a tool's parameters.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// ObjectSchema builds an object InputSchema.
func ObjectSchema(props map[string]Property, required ...string) InputSchema {
	return InputSchema{Type: "object", Properties: props, Required: required}
}

// ToolError builds the structured error result returned in place of a tool output.
func ToolError(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// IsToolError reports whether a tool result is an error result.
func IsToolError(result map[string]any) bool {
	_, ok := result["error"]
	return ok
}
