package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

var (
	toolParams string
	toolKB     string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect and invoke agent tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tools available to the agent",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsInvokeCmd = &cobra.Command{
	Use:   "invoke [name]",
	Short: "Invoke a tool directly",
	Long: `Dispatches one tool call without running the agent loop. Tool failures
are reported in the result as {"error": ...}.`,
	Example: `  ragent tools invoke search_knowledge_base --params '{"query":"refund policy"}'`,
	Args:    cobra.ExactArgs(1),
	RunE:    runToolsInvoke,
}

func init() {
	toolsInvokeCmd.Flags().StringVar(&toolParams, "params", "{}", "tool parameters as a JSON object")
	toolsInvokeCmd.Flags().StringVar(&toolKB, "kb", domain.DefaultKnowledgeBase, "default knowledge base")
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsInvokeCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	if toolService == nil {
		return errNotConfigured("tool service")
	}

	defs := toolService.ListTools()
	return render(cmd, map[string]any{"tools": defs}, func(p *printer) {
		if len(defs) == 0 {
			p.Println("No tools registered.")
			return
		}
		for _, def := range defs {
			p.Heading(def.Name)
			p.Printf("  %s\n", firstLine(def.Description))
			names := make([]string, 0, len(def.InputSchema.Properties))
			for name := range def.InputSchema.Properties {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				prop := def.InputSchema.Properties[name]
				marker := ""
				if slices.Contains(def.InputSchema.Required, name) {
					marker = " (required)"
				}
				p.Muted("    %s: %s%s", name, prop.Type, marker)
			}
			p.Println()
		}
	})
}

func runToolsInvoke(cmd *cobra.Command, args []string) error {
	if toolService == nil {
		return errNotConfigured("tool service")
	}

	name := args[0]
	if len(toolService.Definitions([]string{name})) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}

	params := map[string]any{}
	if err := json.Unmarshal([]byte(toolParams), &params); err != nil {
		return fmt.Errorf("%w: --params must be a JSON object: %v", domain.ErrInvalidInput, err)
	}

	result := toolService.Invoke(cmd.Context(), name, params, toolKB)
	out := map[string]any{"tool": name, "result": result}
	if err := render(cmd, out, func(p *printer) {
		data, _ := json.MarshalIndent(result, "", "  ") //nolint:errchkjson // tool results are JSON values
		p.Println(string(data))
	}); err != nil {
		return err
	}
	if domain.IsToolError(result) {
		return fmt.Errorf("%w: %v", domain.ErrToolExecutionFailed, result["error"])
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
