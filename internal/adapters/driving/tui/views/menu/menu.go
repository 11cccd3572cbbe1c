// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
)

// DefaultSubtitle is shown under the title.
const DefaultSubtitle = "Agentic retrieval-augmented generation"

// Item is one menu entry. Quit entries exit instead of switching view.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

func defaultItems() []Item {
	return []Item{
		{Label: "Chat with the agent", Description: "Run tasks with tools and the knowledge base", View: messages.ViewChat},
		{Label: "Search knowledge base", Description: "Semantic search over ingested documents", View: messages.ViewSearch},
		{Label: "Quit", Quit: true},
	}
}

// View is the start screen listing the other views.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	subtitle string
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a menu with the default entries.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		items:    defaultItems(),
		subtitle: DefaultSubtitle,
		width:    80,
		height:   24,
	}
}

// SetSubtitle replaces the subtitle, e.g. with the active knowledge base.
func (v *View) SetSubtitle(subtitle string) {
	v.subtitle = subtitle
}

// Remove drops the entries that open view.
func (v *View) Remove(view messages.ViewType) {
	kept := v.items[:0]
	for _, item := range v.items {
		if item.Quit || item.View != view {
			kept = append(kept, item)
		}
	}
	v.items = kept
	v.selected = min(v.selected, len(v.items)-1)
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}

// Update moves the highlight and emits a view change on selection.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			v.selected = max(v.selected-1, 0)
		case key.Matches(msg, v.keymap.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case key.Matches(msg, v.keymap.Exit):
			return v, tea.Quit
		case key.Matches(msg, v.keymap.Select):
			return v, v.choose(v.items[v.selected])
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("ragent"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Subtitle.Render(v.subtitle))
	b.WriteString("\n\n")

	for i, item := range v.items {
		if i != v.selected {
			b.WriteString("  " + v.styles.Normal.Render(item.Label) + "\n")
			continue
		}
		b.WriteString("> " + v.styles.Selected.Render(item.Label))
		if item.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(helpLine(v.keymap.MenuHelp())))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
