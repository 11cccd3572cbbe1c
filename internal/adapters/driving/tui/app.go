package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

// App is the root tea.Model. It owns one instance of each view and routes
// messages to the active one; completion messages always reach the view
// that started the work.
type App struct {
	ports  *Ports
	ctx    context.Context
	keymap *keymap.KeyMap

	menuView   *menu.View
	chatView   *chat.View
	searchView *search.View
	active     messages.ViewType

	err           error
	width, height int
	ready         bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp wires the views to the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	kb := domain.KnowledgeBaseOrDefault(ports.KnowledgeBaseID)

	menuView := menu.NewView(s, km)
	menuView.SetSubtitle(menu.DefaultSubtitle + " · knowledge base: " + kb)
	if ports.Retriever == nil {
		menuView.Remove(messages.ViewSearch)
	}

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		keymap:   km,
		menuView: menuView,
		chatView: chat.NewView(s, km, ports.Agent, chat.Options{
			KnowledgeBaseID: ports.KnowledgeBaseID,
			Model:           ports.Model,
			MaxIterations:   ports.MaxIterations,
		}),
		searchView: search.NewView(s, km, ports.Retriever, ports.KnowledgeBaseID, ports.TopK),
		active:     messages.ViewMenu,
	}, nil
}

// WithContext scopes agent runs and searches to ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("ragent")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.Quit) {
			return a, tea.Quit
		}

	case messages.ViewChanged:
		return a, a.show(msg.View)

	case messages.TaskCompleted:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// show activates view and returns its start command.
func (a *App) show(view messages.ViewType) tea.Cmd {
	a.active = view
	switch view {
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewSearch:
		a.searchView.Reset()
		return a.searchView.Init()
	default:
		return nil
	}
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.active {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	default:
		a.menuView, cmd = a.menuView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.active {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	default:
		return a.menuView.View()
	}
}

// Run blocks until the user quits or the context is cancelled.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.active
}

// Err returns the last error reported by a view.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether a window size has been received.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true

	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
}
