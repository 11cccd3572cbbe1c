package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

var (
	agentKB            string
	agentModel         string
	agentMaxIterations int
	agentTools         []string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the tool-using agent",
	Long:  `Run single agent tasks or chat with the agent interactively.`,
}

var agentRunCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run one agent task",
	Long: `Runs the agent loop: the model may call tools (knowledge base search,
code execution, web search) for up to --max-iterations rounds before
answering.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgentRun,
}

var agentChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent in the terminal UI",
	Long: `Launch the interactive terminal UI. Each message runs as its own agent
task against the selected knowledge base.

Controls:
  Enter       - Send message / select
  PgUp/PgDn   - Scroll the transcript
  Esc         - Back to menu
  Ctrl+C      - Quit`,
	RunE: runAgentChat,
}

func init() {
	for _, c := range []*cobra.Command{agentRunCmd, agentChatCmd} {
		c.Flags().StringVar(&agentKB, "kb", "", "knowledge base for search_knowledge_base (default: default)")
		c.Flags().StringVar(&agentModel, "model", "", "LLM model override")
		c.Flags().IntVar(&agentMaxIterations, "max-iterations", 0, "maximum loop iterations (1-20, default 5)")
	}
	agentRunCmd.Flags().StringSliceVar(&agentTools, "tools", nil, "restrict the agent to these tools")

	agentCmd.AddCommand(agentRunCmd)
	agentCmd.AddCommand(agentChatCmd)
	rootCmd.AddCommand(agentCmd)
}

// taskRequest applies flags over the configured agent defaults.
func taskRequest(task string) domain.TaskRequest {
	req := domain.TaskRequest{
		Task:            task,
		Model:           agentDefaults.Model,
		MaxIterations:   agentDefaults.MaxIterations,
		MaxTokens:       agentDefaults.MaxTokens,
		KnowledgeBaseID: agentKB,
		Tools:           agentTools,
	}
	if agentModel != "" {
		req.Model = agentModel
	}
	if agentMaxIterations != 0 {
		req.MaxIterations = agentMaxIterations
	}
	return req
}

func runAgentRun(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errNotConfigured("agent service")
	}

	result, err := agentService.Execute(cmd.Context(), taskRequest(strings.Join(args, " ")))
	if err != nil {
		return fmt.Errorf("agent task failed: %w", err)
	}

	return render(cmd, result, func(p *printer) {
		for _, step := range result.Steps {
			p.Heading(fmt.Sprintf("Step %d", step.Iteration))
			if step.Thought != "" {
				p.Muted("  %s", snippet(step.Thought, maxSnippet))
			}
			for _, use := range step.ToolUses {
				p.Tool("  ↳ %s %s", use.Tool, compactJSON(use.Input))
				if domain.IsToolError(use.Result) {
					p.Failure("    error: %v", use.Result["error"])
				}
			}
		}
		if len(result.Steps) > 0 {
			p.Println()
		}
		p.Println(result.Result)
		p.Println()
		status := "completed"
		if !result.Success {
			status = "stopped before the model finished"
		}
		p.Muted("%s | %d steps | %d in / %d out tokens",
			status, len(result.Steps), result.Usage.InputTokens, result.Usage.OutputTokens)
	})
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return snippet(string(data), maxSnippet)
}

func runAgentChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	req := taskRequest("")
	ports := tui.NewPorts(agentService, retriever)
	ports.KnowledgeBaseID = agentKB
	ports.Model = req.Model
	ports.MaxIterations = req.MaxIterations

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
