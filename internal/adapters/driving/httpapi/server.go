// Package httpapi exposes the RAG, agent and document services over HTTP
// using gin. Errors are returned as {"error": {"message", "code"}} with a
// status derived from the domain sentinel they wrap.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Services are the driving ports served by the API.
// Nil services answer their routes with 503.
type Services struct {
	RAG       driving.RAGService
	Agent     driving.AgentService
	Tools     driving.ToolService
	Documents driving.DocumentService
	Retriever driving.Retriever
	Health    driving.HealthService
	Version   string

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server is the HTTP API server.
type Server struct {
	engine *gin.Engine
}

// NewServer builds the router for services.
func NewServer(services Services) *Server {
	return &Server{engine: NewRouter(services)}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down HTTP API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// NewRouter registers every route on a new gin engine.
func NewRouter(services Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORS())

	h := &handlers{services: services}

	r.GET("/", h.root)
	r.GET("/health", h.health)
	if services.MCP != nil {
		r.Any("/mcp", gin.WrapH(services.MCP))
	}

	api := r.Group("/api")
	{
		rag := api.Group("/rag")
		rag.POST("/query", h.ragQuery)
		rag.POST("/search", h.ragSearch)
		rag.GET("/knowledge-bases", h.knowledgeBases)

		agent := api.Group("/agent")
		agent.POST("/execute", h.agentExecute)
		agent.GET("/tools", h.listTools)
		agent.POST("/tools/:name/invoke", h.invokeTool)

		docs := api.Group("/documents")
		docs.POST("/upload", h.uploadDocument)
		docs.POST("/add-text", h.addText)
		docs.POST("/batch-upload", h.batchUpload)
		docs.DELETE("/delete/:id", h.deleteDocument)
		docs.GET("/list", h.listDocuments)
	}

	return r
}
