package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func TestHealthCmd_Healthy(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "health")

	require.NoError(t, err)
	assert.Contains(t, out, "llm: ready")
	assert.Contains(t, out, "Status: healthy")
}

func TestHealthCmd_Degraded(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.health.components = append(ts.health.components, domain.ComponentStatus{
		Name: domain.ComponentEmbedding, State: domain.StateFailed, Error: "connection refused",
	})

	out, err := runCommand(t, "health")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errUnhealthy))
	assert.Contains(t, out, "embedding: failed (connection refused)")
	assert.Contains(t, out, "Status: degraded")
}
