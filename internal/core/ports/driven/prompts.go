package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the
	// built-in default or an error when none exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGSystem is the system instruction for single-shot RAG answers.
	// No format placeholders.
	PromptRAGSystem = "rag_system"

	// PromptRAGUser wraps retrieved context and the question.
	// Expects two %s placeholders: context, then query.
	PromptRAGUser = "rag_user"

	// PromptAgentSystem is the system instruction for the agent loop.
	// No format placeholders.
	PromptAgentSystem = "agent_system"
)

// Built-in prompt templates, used when no PromptStore is configured
// and as the initial content of user-editable prompt files.
const (
	DefaultRAGSystemPrompt = `You are a helpful AI assistant that answers questions based on the provided context.
If the context doesn't contain relevant information, say so clearly.
Always cite your sources when possible.`

	DefaultRAGUserPrompt = `Context:
%s

Question: %s

Please provide a comprehensive answer based on the context above.`

	DefaultAgentSystemPrompt = `You are a helpful AI agent that can use tools to complete tasks.
Think step by step about what you need to do.
Use the available tools when necessary to gather information or perform actions.
Always provide a clear final answer to the user's request.`
)

// DefaultPrompts maps prompt names to their built-in templates.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptRAGSystem:   DefaultRAGSystemPrompt,
		PromptRAGUser:     DefaultRAGUserPrompt,
		PromptAgentSystem: DefaultAgentSystemPrompt,
	}
}
