package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/messages"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
	assert.Equal(t, 0, view.Selected())
	assert.Len(t, view.Items(), 3)
	assert.Equal(t, "Initialising...", view.View())
}

func TestView_Navigate(t *testing.T) {
	view := NewView(nil, nil)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.Selected())

	view, _ = view.Update(keyRune('j'))
	view, _ = view.Update(keyRune('j'))
	assert.Equal(t, 2, view.Selected(), "stops at the last item")

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	view, _ = view.Update(keyRune('k'))
	view, _ = view.Update(keyRune('k'))
	assert.Equal(t, 0, view.Selected(), "stops at the first item")
}

func TestView_SelectSwitchesView(t *testing.T) {
	for i, want := range []messages.ViewType{messages.ViewChat, messages.ViewSearch} {
		t.Run(want.String(), func(t *testing.T) {
			view := NewView(nil, nil)
			view.selected = i

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: want}, cmd())
		})
	}
}

func TestView_Quit(t *testing.T) {
	t.Run("quit entry", func(t *testing.T) {
		view := NewView(nil, nil)
		view.selected = 2

		_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("q key", func(t *testing.T) {
		_, cmd := NewView(nil, nil).Update(keyRune('q'))

		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestView_Render(t *testing.T) {
	view := NewView(nil, nil)
	view, _ = view.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view.SetSubtitle("knowledge base: docs")

	output := view.View()

	assert.Contains(t, output, "ragent")
	assert.Contains(t, output, "knowledge base: docs")
	assert.Contains(t, output, "Chat with the agent")
	assert.Contains(t, output, "Run tasks with tools")
	assert.NotContains(t, output, "Semantic search over", "only the highlighted entry shows its description")
	assert.Contains(t, output, "[enter] select")
}

func TestView_Remove(t *testing.T) {
	view := NewView(nil, nil)
	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	view.Update(tea.KeyMsg{Type: tea.KeyDown})

	view.Remove(messages.ViewSearch)

	require.Len(t, view.Items(), 2)
	assert.Equal(t, messages.ViewChat, view.Items()[0].View)
	assert.True(t, view.Items()[1].Quit)
	assert.Equal(t, 1, view.Selected())
}
