package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the vector index and other options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Select the vector index backend",
	Long: `Select where chunk embeddings are stored.

Available backends:
  memory  - In-process index, lost on exit (default)
  sqlite  - Local database under the data directory
  qdrant  - Remote Qdrant server (set vector.qdrant_url)`,
	RunE: runSettingsVector,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and retrieve chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that answers questions and drives the agent.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsVectorCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	validation := settingsService.Validate()

	return render(cmd, settingsView(settings, validation), func(p *printer) {
		p.Heading("[Embedding]")
		printProvider(p, settings.Embedding.Provider, settings.Embedding.Model,
			settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

		p.Heading("[LLM]")
		printProvider(p, settings.LLM.Provider, settings.LLM.Model,
			settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

		p.Heading("[Vector Index]")
		p.Printf("  Backend: %s\n", settings.Vector.Backend.Description())
		switch settings.Vector.Backend {
		case domain.VectorBackendSQLite:
			p.Printf("  Data dir: %s\n", settings.Vector.DataDir)
		case domain.VectorBackendQdrant:
			p.Printf("  URL: %s\n", settings.Vector.QdrantURL)
		case domain.VectorBackendMemory:
		}
		if settings.Cache.RedisAddr != "" {
			p.Printf("  Embedding cache: redis %s\n", settings.Cache.RedisAddr)
		}
		p.Println()

		p.Heading("[Agent]")
		p.Printf("  Model: %s\n", settings.Agent.Model)
		p.Printf("  Max iterations: %d\n", settings.Agent.MaxIterations)
		p.Printf("  Chunking: %d chars, %d overlap\n", settings.Chunker.Size, settings.Chunker.Overlap)
		if settings.Sandbox.URL != "" {
			p.Printf("  Code sandbox: %s\n", settings.Sandbox.URL)
		} else {
			p.Printf("  Code sandbox: (not configured)\n")
		}
		p.Println()

		if validation != nil {
			p.Failure("Warning: %v", validation)
			p.Println("Run 'ragent settings wizard' to fix configuration issues.")
		} else {
			p.Println("Configuration is valid.")
		}
	})
}

func printProvider(p *printer, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	p.Printf("  Provider: %s\n", provider.Description())
	p.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		p.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			p.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			p.Printf("  API Key: (not set)\n")
		}
	}
	if configured {
		p.Println("  Status: configured")
	} else {
		p.Println("  Status: not configured")
	}
	p.Println()
}

// settingsView is the machine-readable form of settings show.
// Secrets are masked.
func settingsView(s *domain.AppSettings, validation error) map[string]any {
	errMsg := ""
	if validation != nil {
		errMsg = validation.Error()
	}
	return map[string]any{
		"embedding": map[string]any{
			"provider":   s.Embedding.Provider,
			"model":      s.Embedding.Model,
			"api_key":    maskedOrEmpty(s.Embedding.APIKey),
			"configured": s.Embedding.IsConfigured(),
		},
		"llm": map[string]any{
			"provider":   s.LLM.Provider,
			"model":      s.LLM.Model,
			"api_key":    maskedOrEmpty(s.LLM.APIKey),
			"configured": s.LLM.IsConfigured(),
		},
		"vector": map[string]any{
			"backend":    s.Vector.Backend,
			"data_dir":   s.Vector.DataDir,
			"qdrant_url": s.Vector.QdrantURL,
		},
		"cache":   map[string]any{"redis_addr": s.Cache.RedisAddr},
		"sandbox": map[string]any{"url": s.Sandbox.URL, "timeout_ms": s.Sandbox.TimeoutMillis},
		"chunker": map[string]any{"size": s.Chunker.Size, "overlap": s.Chunker.Overlap},
		"agent": map[string]any{
			"model":          s.Agent.Model,
			"max_iterations": s.Agent.MaxIterations,
		},
		"valid": validation == nil,
		"error": errMsg,
	}
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("ragent Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Select Vector Index")
	cmd.Println("---------------------------")
	if err := selectVectorBackend(cmd, reader, 1); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return selectVectorBackend(cmd, reader, 0)
}

// selectVectorBackend prompts for a backend. A zero defaultChoice makes
// an empty answer an error.
func selectVectorBackend(cmd *cobra.Command, reader *bufio.Reader, defaultChoice int) error {
	backends := domain.AllVectorBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	if defaultChoice > 0 {
		cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	} else {
		cmd.Print("\nEnter choice: ")
	}
	idx := parseChoice(readLine(reader), len(backends), defaultChoice)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := backends[idx-1]
	if err := settingsService.SetVectorBackend(selected); err != nil {
		return fmt.Errorf("failed to set vector backend: %w", err)
	}
	cmd.Printf("Vector backend set to: %s\n\n", selected.Description())

	if selected == domain.VectorBackendQdrant {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && settings.Vector.QdrantURL == "" {
			cmd.Println("Note: set RAGENT_VECTOR_QDRANT_URL or vector.qdrant_url in config.toml.")
			return nil
		}
	}

	cmd.Print("Checking vector index... ")
	if err := settingsService.ValidateVectorConfig(); err != nil {
		cmd.Println("failed")
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("The setting was saved; queries will fail until the index is reachable.")
		return nil
	}
	cmd.Println("ok")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

// providerPrompt describes one provider section of the wizard.
type providerPrompt struct {
	label     string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	save      func(domain.AIProvider, string, string) error
	validate  func() error
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	return configureProvider(cmd, reader, providerPrompt{
		label:     "Embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		save:      settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	})
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	return configureProvider(cmd, reader, providerPrompt{
		label:     "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		save:      settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	})
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, pp providerPrompt) error {
	cmd.Printf("Select %s Provider\n", pp.label)
	for i, p := range pp.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := pp.providers[parseChoice(readLine(reader), len(pp.providers), 1)-1]

	model := pp.models[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if m := readLine(reader); m != "" {
		model = m
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := pp.save(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(pp.label), err)
	}

	cmd.Print("Validating configuration... ")
	if err := pp.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", pp.label, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", pp.label, provider.Description(), model)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseChoice maps a 1-based menu answer to its index, falling back to
// defaultVal for empty or out-of-range input.
func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when attached to a terminal, otherwise
// from the shared reader so piped answers stay in order.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskedOrEmpty(key string) string {
	if key == "" {
		return ""
	}
	return maskAPIKey(key)
}
