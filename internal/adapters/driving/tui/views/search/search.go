// Package search provides the knowledge base search view for the TUI.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

// ErrNoRetriever is reported when a search runs without a retriever.
var ErrNoRetriever = errors.New("search: retriever is required")

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	list      *list.ResultList
	statusbar *status.Bar

	retriever       driving.Retriever
	knowledgeBaseID string
	topK            int
	ctx             context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating results
}

// NewView creates a new search view over a knowledge base.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retriever driving.Retriever,
	knowledgeBaseID string,
	topK int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	knowledgeBaseID = domain.KnowledgeBaseOrDefault(knowledgeBaseID)
	bar := status.NewBar(s, km)
	bar.SetKnowledgeBase(knowledgeBaseID)

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewPrompt(s, "Search:", "Enter search query..."),
		list:            list.NewResultList(s),
		statusbar:       bar,
		retriever:       retriever,
		knowledgeBaseID: knowledgeBaseID,
		topK:            topK,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		focusInput:      true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	if v.focusInput {
		return v.typing(msg)
	}
	return v.browsing(msg)
}

// typing edits the query until enter submits it.
func (v *View) typing(msg tea.KeyMsg) (*View, tea.Cmd) {
	if !key.Matches(msg, v.keymap.Send) {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return v, nil
	}
	v.statusbar.SetState(status.StateSearching)
	v.focusInput = false
	v.input.Blur()
	return v, v.performSearch(query)
}

// browsing moves through the result list.
func (v *View) browsing(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Expand):
		v.list.ToggleExpanded()
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

// performSearch queries the retriever off the update loop.
func (v *View) performSearch(query string) tea.Cmd {
	retriever := v.retriever
	ctx := v.ctx
	req := domain.SearchRequest{Query: query, KnowledgeBaseID: v.knowledgeBaseID, TopK: v.topK}

	return func() tea.Msg {
		if retriever == nil {
			return messages.ErrorOccurred{Err: ErrNoRetriever}
		}
		results, err := retriever.Search(ctx, req)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

// handleSearchCompleted processes search results.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)

	header := v.styles.Title.Render("Search") + v.styles.Muted.Render("  kb: "+v.knowledgeBaseID)
	sections = append(sections, header, "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status bar
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
