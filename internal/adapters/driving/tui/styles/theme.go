// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette. Each colour adapts to light and dark terminals.
type Theme struct {
	Accent    lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Subtle    lipgloss.AdaptiveColor
	Tool      lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Bar       lipgloss.AdaptiveColor
}

// DefaultTheme is a violet accent palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"},
		Secondary: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"},
		Text:      lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Subtle:    lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Tool:      lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"},
		Danger:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		Bar:       lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"},
	}
}

// Styles are the rendered styles views share.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style

	// InputField frames prompts.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript speakers.
	User     lipgloss.Style
	Agent    lipgloss.Style
	ToolCall lipgloss.Style
	Spinner  lipgloss.Style

	// Score renders the relevance meter on search results.
	Score lipgloss.Style
}

// NewStyles builds styles from theme, or the default theme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	text := lipgloss.NewStyle().Foreground(theme.Text)
	subtle := lipgloss.NewStyle().Foreground(theme.Subtle)

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   text,
		Muted:    subtle,
		Selected: text.Bold(true).Reverse(true),
		Error:    lipgloss.NewStyle().Foreground(theme.Danger),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: subtle.Background(theme.Bar).Padding(0, 1),

		User:     lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Agent:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		ToolCall: lipgloss.NewStyle().Italic(true).Foreground(theme.Tool).PaddingLeft(2),
		Spinner:  lipgloss.NewStyle().Foreground(theme.Accent),

		Score: lipgloss.NewStyle().Foreground(theme.Secondary),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
