// Package cli provides the ragent command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose      bool
	configDir    string
	outputJSON   bool
	outputFormat string
)

// Services injected by the entry point.
var (
	ragService      driving.RAGService
	agentService    driving.AgentService
	toolService     driving.ToolService
	documentService driving.DocumentService
	retriever       driving.Retriever
	healthService   driving.HealthService
	settingsService driving.SettingsService

	agentDefaults domain.AgentSettings
	serverAddr    = domain.DefaultServerAddr
)

// Services groups the driving ports the commands call.
type Services struct {
	RAG       driving.RAGService
	Agent     driving.AgentService
	Tools     driving.ToolService
	Documents driving.DocumentService
	Retriever driving.Retriever
	Health    driving.HealthService
	Settings  driving.SettingsService

	// AgentDefaults holds the configured agent model and bounds.
	AgentDefaults domain.AgentSettings
	// ServerAddr is the default listen address for serve.
	ServerAddr string
}

// Bootstrap builds the services once flags are parsed. The returned
// function releases them.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

// Options carries the persistent flag values into Bootstrap.
type Options struct {
	ConfigDir string
	Verbose   bool
}

var (
	bootstrap Bootstrap
	release   func()
)

var rootCmd = &cobra.Command{
	Use:   "ragent",
	Short: "Agentic retrieval-augmented generation",
	Long: `ragent indexes documents into knowledge bases, answers questions from
retrieved context and runs a tool-using agent over them.

Serve it over HTTP with 'ragent serve', expose its tools to MCP clients
with 'ragent mcp serve', or chat with the agent in the terminal with
'ragent agent chat'.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if release != nil {
			release()
			release = nil
		}
		logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default: ~/.ragent)")
	flags.BoolVar(&outputJSON, "json", false, "output results as JSON")
	flags.StringVar(&outputFormat, "format", formatText, "output format: text, json or yaml")
}

// SetBootstrap registers the function that builds services before a
// command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	ragService = s.RAG
	agentService = s.Agent
	toolService = s.Tools
	documentService = s.Documents
	retriever = s.Retriever
	healthService = s.Health
	settingsService = s.Settings
	agentDefaults = s.AgentDefaults
	if s.ServerAddr != "" {
		serverAddr = s.ServerAddr
	}
}

// SetVersion sets the version reported by the version command and the API.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command, printing results to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if err := validateFormat(); err != nil {
		return err
	}
	if bootstrap == nil || skipBootstrap(cmd) {
		return nil
	}

	dir, err := resolveConfigDir(configDir)
	if err != nil {
		return err
	}
	services, closeFn, err := bootstrap(cmd.Context(), Options{ConfigDir: dir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	SetServices(services)
	release = closeFn
	return nil
}

// skipBootstrap reports whether cmd runs without services.
func skipBootstrap(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv("RAGENT_CONFIG_DIR"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ragent"), nil
}

// errNotConfigured reports a service the entry point did not provide.
func errNotConfigured(what string) error {
	return errors.New(what + " not configured")
}
