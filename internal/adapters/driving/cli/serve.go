package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/adapters/driving/httpapi"
)

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the REST API: RAG query and search, agent execution, direct tool
invocation, document management and /health.

With --mcp the Model Context Protocol endpoint is mounted at /mcp.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr, :8000)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve MCP at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serveAddr
	if addr == "" {
		addr = serverAddr
	}

	services := httpapi.Services{
		RAG:       ragService,
		Agent:     agentService,
		Tools:     toolService,
		Documents: documentService,
		Retriever: retriever,
		Health:    healthService,
		Version:   version,
	}
	if serveMCP {
		mcpServer, err := newMCPServer()
		if err != nil {
			return err
		}
		services.MCP = mcpServer.Handler()
	}
	server := httpapi.NewServer(services)

	cmd.Printf("HTTP API listening on http://localhost%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
