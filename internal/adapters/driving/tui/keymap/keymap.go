// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the views react to. Views test key messages
// with key.Matches so rebinding happens in one place.
type KeyMap struct {
	Quit key.Binding
	Exit key.Binding
	Back key.Binding

	// List navigation and selection.
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Chat transcript.
	Send       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Search results.
	NewSearch key.Binding
	Expand    key.Binding
}

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:       binding("ctrl+c", "quit", "ctrl+c"),
		Exit:       binding("q", "quit", "q"),
		Back:       binding("esc", "back", "esc"),
		Up:         binding("↑/k", "up", "up", "k"),
		Down:       binding("↓/j", "down", "down", "j"),
		Select:     binding("enter", "select", "enter"),
		Send:       binding("enter", "send", "enter"),
		ScrollUp:   binding("pgup", "scroll up", "pgup"),
		ScrollDown: binding("pgdn", "scroll down", "pgdown"),
		NewSearch:  binding("n", "new search", "n"),
		Expand:     binding("enter", "expand", "enter"),
	}
}

// ShortHelp is the status bar fallback.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

// MenuHelp lists the menu bindings.
func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Exit}
}

// ChatHelp lists the chat bindings.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.ScrollUp, k.Back}
}

// ResultsHelp lists the bindings available while browsing results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Expand, k.Back}
}

// FullHelp groups every binding by view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.MenuHelp(),
		{k.Send, k.ScrollUp, k.ScrollDown},
		{k.NewSearch, k.Expand},
		{k.Back, k.Quit},
	}
}
