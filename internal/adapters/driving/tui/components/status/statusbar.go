// Package status renders the one-line footer shared by the TUI views.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

// State is what the owning view is doing.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

const segmentSeparator = " · "

// Bar shows the view state on the left, context segments after it and
// key hints on the right. It is passive: views push state through setters.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	hints  []key.Binding
	width  int

	state         State
	message       string
	resultCount   int
	knowledgeBase string
	steps         int
	usage         domain.Usage
}

// NewBar creates a status bar. Nil arguments fall back to defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := s.renderState()
	if seg := s.renderSegments(); seg != "" {
		left += s.styles.Muted.Render(segmentSeparator) + seg
	}
	right := s.renderHints()

	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) renderState() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Agent working...")
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateResults:
		if s.message == "" {
			return s.styles.Normal.Render(pluralise(s.resultCount, "result"))
		}
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderSegments() string {
	var parts []string
	if s.knowledgeBase != "" {
		parts = append(parts, "kb: "+s.knowledgeBase)
	}
	if s.steps > 0 || s.usage.InputTokens > 0 {
		parts = append(parts, fmt.Sprintf("%s, %d in / %d out tokens",
			pluralise(s.steps, "step"), s.usage.InputTokens, s.usage.OutputTokens))
	}
	if len(parts) == 0 {
		return ""
	}
	return s.styles.Muted.Render(strings.Join(parts, segmentSeparator))
}

func (s *Bar) renderHints() string {
	bindings := s.keymap.ShortHelp()
	switch {
	case s.state == StateResults && s.resultCount > 0:
		bindings = s.keymap.ResultsHelp()
	case len(s.hints) > 0:
		bindings = s.hints
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// SetHints replaces the default key hints.
func (s *Bar) SetHints(bindings []key.Binding) { s.hints = bindings }

// SetState sets what the view is doing.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the current state.
func (s *Bar) State() State { return s.state }

// SetMessage overrides the state label. Errors show it after "Error:".
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current message.
func (s *Bar) Message() string { return s.message }

// SetResultCount records how many search results are listed.
func (s *Bar) SetResultCount(count int) { s.resultCount = count }

// ResultCount returns the result count.
func (s *Bar) ResultCount() int { return s.resultCount }

// SetKnowledgeBase shows which knowledge base the view targets.
func (s *Bar) SetKnowledgeBase(id string) { s.knowledgeBase = id }

// SetUsage records the last agent run's step count and token usage.
func (s *Bar) SetUsage(steps int, usage domain.Usage) {
	s.steps = steps
	s.usage = usage
}

// Usage returns the last recorded step count and token usage.
func (s *Bar) Usage() (int, domain.Usage) { return s.steps, s.usage }

// SetWidth sets the rendered width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the rendered width.
func (s *Bar) Width() int { return s.width }

// Clear resets state, message, counts and usage. The knowledge base stays.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
	s.steps = 0
	s.usage = domain.Usage{}
}
