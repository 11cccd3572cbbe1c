package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func TestAgentRunCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "agent", "run", "find", "refund", "rules", "--max-iterations", "3", "--tools", "search_knowledge_base,web_search")

	require.NoError(t, err)
	assert.Contains(t, out, "Step 1")
	assert.Contains(t, out, "Let me search.")
	assert.Contains(t, out, `↳ search_knowledge_base {"query":"refunds"}`)
	assert.Contains(t, out, "All done.")
	assert.Contains(t, out, "completed | 1 steps | 100 in / 20 out tokens")
	assert.Equal(t, "find refund rules", ts.agent.got.Task)
	assert.Equal(t, 3, ts.agent.got.MaxIterations)
	assert.Equal(t, []string{"search_knowledge_base", "web_search"}, ts.agent.got.Tools)
}

func TestAgentRunCmd_UsesConfiguredDefaults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	agentDefaults = domain.AgentSettings{Model: "configured", MaxIterations: 7, MaxTokens: 1024}

	_, err := runCommand(t, "agent", "run", "task")
	require.NoError(t, err)
	assert.Equal(t, "configured", ts.agent.got.Model)
	assert.Equal(t, 7, ts.agent.got.MaxIterations)
	assert.Equal(t, 1024, ts.agent.got.MaxTokens)

	_, err = runCommand(t, "agent", "run", "task", "--model", "override")
	require.NoError(t, err)
	assert.Equal(t, "override", ts.agent.got.Model)
}

func TestAgentRunCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.agent.err = errors.New("bad iterations")

	_, err := runCommand(t, "agent", "run", "task")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent task failed")
}

func TestAgentRunCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	agentService = nil

	_, err := runCommand(t, "agent", "run", "task")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent service not configured")
}

func TestAgentChatCmd_RequiresAgent(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	agentService = nil

	_, err := runCommand(t, "agent", "chat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create TUI")
}
