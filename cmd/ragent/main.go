// Command ragent runs the agent and retrieval-augmented generation toolkit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragent/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragent/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragent/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/ragent/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/services"
	"github.com/custodia-labs/ragent/internal/logger"
	"github.com/custodia-labs/ragent/internal/normalisers"
	"github.com/custodia-labs/ragent/internal/postprocessors"
)

// Set by the release build.
var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap builds every service once from the stored settings. The
// returned func releases the vector index, embedder and LLM clients.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	health := services.NewHealthService(
		domain.ComponentVectorStore,
		domain.ComponentLLM,
		domain.ComponentEmbedding,
	)
	deps := ai.Initialise(ctx, settings, health)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	var prompts driven.PromptStore
	if store, err := file.NewPromptStore(filepath.Join(opts.ConfigDir, "prompts")); err != nil {
		logger.Warn("prompt overrides disabled: %v", err)
	} else {
		prompts = store
		go func() {
			if err := store.Watch(watchCtx, nil); err != nil {
				logger.Debug("prompt watcher stopped: %v", err)
			}
		}()
	}

	release := func() {
		cancelWatch()
		deps.Close()
	}

	chunkers := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(chunkers)
	chunkerSettings := kv.New()
	chunkerSettings.Put(postprocessors.KeyChunkSize, settings.Chunker.Size)
	chunkerSettings.Put(postprocessors.KeyOverlap, settings.Chunker.Overlap)
	chunker, err := chunkers.Build(postprocessors.DefaultChunker, chunkerSettings)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("building chunker: %w", err)
	}

	retriever := services.NewRetrieverService(deps.VectorIndex, deps.EmbeddingService, health)
	tools, err := services.NewBuiltinToolService(services.BuiltinToolDeps{
		Retriever:      retriever,
		Sandbox:        deps.Sandbox,
		SandboxTimeout: time.Duration(settings.Sandbox.TimeoutMillis) * time.Millisecond,
		WebSearcher:    deps.WebSearcher,
	})
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("registering tools: %w", err)
	}

	return &cli.Services{
		RAG:           services.NewRAGService(retriever, deps.LLMService, prompts, health),
		Agent:         services.NewAgentService(deps.LLMService, tools, prompts, health),
		Tools:         tools,
		Documents:     services.NewDocumentService(normalisers.NewDefaultRegistry(), chunker, retriever),
		Retriever:     retriever,
		Health:        health,
		Settings:      settingsService,
		AgentDefaults: settings.Agent,
		ServerAddr:    settings.Server.Addr,
	}, release, nil
}
