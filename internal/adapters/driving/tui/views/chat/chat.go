// Package chat provides the agent conversation view for the TUI.
// Each submitted message runs as an independent agent task.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

const maxToolInputWidth = 60

// Options configures the tasks the chat view submits.
type Options struct {
	KnowledgeBaseID string
	Model           string
	MaxIterations   int
}

type speaker int

const (
	speakerUser speaker = iota
	speakerAgent
	speakerTool
	speakerError
)

type entry struct {
	from speaker
	text string
}

// View is a scrolling transcript with a prompt underneath.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	viewport  viewport.Model
	spinner   spinner.Model
	input     *input.Prompt
	statusbar *status.Bar

	agent   driving.AgentService
	options Options
	ctx     context.Context

	transcript []entry
	busy       bool
	width      int
	height     int
	ready      bool
}

// NewView creates a chat view bound to an agent service.
func NewView(s *styles.Styles, km *keymap.KeyMap, agent driving.AgentService, opts Options) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Spinner

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())
	bar.SetKnowledgeBase(opts.KnowledgeBaseID)

	return &View{
		styles:    s,
		keymap:    km,
		viewport:  viewport.New(80, 16),
		spinner:   sp,
		input:     input.NewPrompt(s, "You:", "Ask the agent..."),
		statusbar: bar,
		agent:     agent,
		options:   opts,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context tasks run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the prompt.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.TaskCompleted:
		v.handleTaskCompleted(msg)
		return v, v.input.Focus()

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case key.Matches(msg, v.keymap.ScrollUp, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	if v.busy {
		return v, nil
	}

	if key.Matches(msg, v.keymap.Send) {
		task := strings.TrimSpace(v.input.Value())
		if task == "" {
			return v, nil
		}
		v.input.Reset()
		v.input.Blur()
		v.append(entry{from: speakerUser, text: task})
		v.busy = true
		v.statusbar.SetState(status.StateThinking)
		return v, tea.Batch(v.spinner.Tick, v.runTask(task))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// runTask executes the agent off the update loop.
func (v *View) runTask(task string) tea.Cmd {
	agent := v.agent
	ctx := v.ctx
	req := domain.TaskRequest{
		Task:            task,
		Model:           v.options.Model,
		MaxIterations:   v.options.MaxIterations,
		KnowledgeBaseID: v.options.KnowledgeBaseID,
	}

	return func() tea.Msg {
		if agent == nil {
			return messages.TaskCompleted{Task: task, Err: ErrNoAgent}
		}
		result, err := agent.Execute(ctx, req)
		return messages.TaskCompleted{Task: task, Result: result, Err: err}
	}
}

func (v *View) handleTaskCompleted(msg messages.TaskCompleted) {
	v.busy = false

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.append(entry{from: speakerError, text: msg.Err.Error()})
		return
	}

	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	if msg.Result == nil {
		return
	}

	for _, step := range msg.Result.Steps {
		for _, use := range step.ToolUses {
			v.transcript = append(v.transcript, entry{from: speakerTool, text: describeToolUse(use)})
		}
	}
	v.append(entry{from: speakerAgent, text: msg.Result.Result})
	v.statusbar.SetUsage(len(msg.Result.Steps), msg.Result.Usage)
}

func (v *View) append(e entry) {
	v.transcript = append(v.transcript, e)
	v.refresh()
}

func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 {
		return v.styles.Muted.Render("Ask a question. The agent can search the knowledge base and use tools.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	lines := make([]string, 0, len(v.transcript)*2)
	for _, e := range v.transcript {
		switch e.from {
		case speakerUser:
			lines = append(lines, v.styles.User.Render("You"), wrap.Render(e.text), "")
		case speakerAgent:
			lines = append(lines, v.styles.Agent.Render("Agent"), wrap.Render(e.text), "")
		case speakerTool:
			lines = append(lines, v.styles.ToolCall.Render(e.text))
		case speakerError:
			lines = append(lines, v.styles.Error.Render("Error: "+e.text), "")
		}
	}
	return strings.Join(lines, "\n")
}

// describeToolUse renders a tool call as name(input) -> outcome.
func describeToolUse(use domain.ToolUse) string {
	in, err := json.Marshal(use.Input)
	if err != nil {
		in = []byte("{}")
	}
	args := string(in)
	if len(args) > maxToolInputWidth {
		args = args[:maxToolInputWidth] + "..."
	}

	outcome := "ok"
	if domain.IsToolError(use.Result) {
		outcome = "error"
	}
	return fmt.Sprintf("↳ %s(%s) -> %s", use.Tool, args, outcome)
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("Agent chat")

	prompt := v.input.View()
	if v.busy {
		prompt = v.spinner.View() + " " + v.styles.Muted.Render("Working on it...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.viewport.View(),
		"",
		prompt,
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript to fill the space above the prompt.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.viewport.Width = width
	v.viewport.Height = max(height-9, 3) // header, prompt and status bar
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy reports whether a task is running.
func (v *View) Busy() bool {
	return v.busy
}

// Transcript returns the rendered conversation.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Reset clears the conversation.
func (v *View) Reset() {
	v.transcript = nil
	v.busy = false
	v.input.Reset()
	v.statusbar.Clear()
	v.refresh()
}
