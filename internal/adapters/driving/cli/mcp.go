package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tools and knowledge bases over MCP",
	Long: `Serve the agent tools, rag_query and agent_execute to MCP clients, with
knowledge bases readable as resources.

Stdio is used by default, which is what desktop assistants launch:

  {"mcpServers": {"ragent": {"command": "ragent", "args": ["mcp", "serve"]}}}

Pass --addr to serve the streamable HTTP transport instead. 'ragent serve
--mcp' mounts the same endpoint on the REST API at /mcp.`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "HTTP listen address, e.g. :8080 (default: stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Tools:     toolService,
		RAG:       ragService,
		Agent:     agentService,
		Documents: documentService,
	})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	cmd.Printf("MCP server listening on http://localhost%s\n", mcpAddr)
	return server.RunHTTP(cmd.Context(), mcpAddr)
}
