// Package list renders retrieved chunks as a selectable list.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

const (
	meterWidth  = 8
	rowHeight   = 3
	headerLines = 2
)

// ResultList shows search results as a title row with a relevance meter
// and a one-line preview. The selected result can be expanded in place.
type ResultList struct {
	styles   *styles.Styles
	results  []domain.SearchResult
	selected int
	expanded bool
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// View renders the visible window of results around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := []string{r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), ""}
	start, end := r.window()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

// window returns the [start, end) range that keeps the selection visible.
func (r *ResultList) window() (int, int) {
	visible := max((r.height-headerLines)/rowHeight, 1)
	start := max(r.selected-visible+1, 0)
	return start, min(start+visible, len(r.results))
}

func (r *ResultList) renderRow(i int) string {
	res := &r.results[i]
	meter := scoreMeter(res.Score) + fmt.Sprintf(" %.2f", res.Score)
	titleWidth := max(r.width-lipgloss.Width(meter)-4, 10)
	title := fmt.Sprintf("%-*s", titleWidth, truncate(label(i, res), titleWidth))

	var row string
	if i == r.selected {
		row = r.styles.Selected.Render("› "+title) + " " + r.styles.Score.Render(meter)
	} else {
		row = r.styles.Normal.Render("  "+title) + " " + r.styles.Muted.Render(meter)
	}

	if i == r.selected && r.expanded {
		body := lipgloss.NewStyle().Width(max(r.width-4, 20)).PaddingLeft(4).Render(res.Content)
		return row + "\n" + r.styles.Normal.Render(body)
	}
	preview := strings.Join(strings.Fields(res.Content), " ")
	return row + "\n" + r.styles.Muted.Render("    "+truncate(preview, max(r.width-6, 20)))
}

// label is "[n] source #chunk", using the document id when there is no source.
func label(i int, res *domain.SearchResult) string {
	name := "(untitled)"
	if src, ok := res.Source(); ok {
		name = src
	} else if id, ok := res.Metadata[domain.MetaDocumentID]; ok {
		name = fmt.Sprint(id)
	}
	if chunk, ok := res.Metadata[domain.MetaChunkIndex]; ok {
		name += fmt.Sprintf(" #%v", chunk)
	}
	return fmt.Sprintf("[%d] %s", i+1, name)
}

// scoreMeter draws score, clamped to [0, 1], as a filled bar.
func scoreMeter(score float64) string {
	filled := int(min(max(score, 0), 1)*meterWidth + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the listed results.
func (r *ResultList) Results() []domain.SearchResult { return r.results }

// Len returns the number of results.
func (r *ResultList) Len() int { return len(r.results) }

// Selected returns the selected index.
func (r *ResultList) Selected() int { return r.selected }

// SetSelected moves the selection when index is in range.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
		r.expanded = false
	}
}

// SelectedResult returns the selected result, or nil when empty.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if len(r.results) == 0 {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp selects the previous result.
func (r *ResultList) MoveUp() { r.SetSelected(r.selected - 1) }

// MoveDown selects the next result.
func (r *ResultList) MoveDown() { r.SetSelected(r.selected + 1) }

// ToggleExpanded shows or hides the selected result's full text.
func (r *ResultList) ToggleExpanded() { r.expanded = !r.expanded }

// Expanded reports whether the selected result is expanded.
func (r *ResultList) Expanded() bool { return r.expanded }

// SetDimensions sets the area the list renders into.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}
