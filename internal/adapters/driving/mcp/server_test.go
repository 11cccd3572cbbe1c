package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil tool service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingToolService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Tools: &mockToolService{defs: []domain.ToolDefinition{searchToolDef()}},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("all ports creates server", func(t *testing.T) {
		ports := &Ports{
			Tools:     &mockToolService{defs: []domain.ToolDefinition{searchToolDef()}},
			RAG:       &mockRAGService{},
			Agent:     &mockAgentService{},
			Documents: &mockDocumentService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(&Ports{Tools: &mockToolService{}})
	require.NoError(t, err)

	assert.NotNil(t, server.Handler())
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Tools: &mockToolService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingToolService)
	assert.NoError(t, (&Ports{Tools: &mockToolService{}}).Validate())
}
