// Package messages holds the tea.Msg types passed between the TUI views
// and the root model.
package messages

import (
	"github.com/custodia-labs/ragent/internal/core/domain"
)

// ViewType identifies a top-level view.
type ViewType int

// Views, in menu order.
const (
	ViewMenu ViewType = iota
	ViewChat
	ViewSearch
)

var viewNames = [...]string{
	ViewMenu:   "menu",
	ViewChat:   "chat",
	ViewSearch: "search",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged asks the root model to activate View.
type ViewChanged struct {
	View ViewType
}

// TaskCompleted reports an agent run started from the chat view.
type TaskCompleted struct {
	Task   string
	Result *domain.TaskResult
	Err    error
}

// SearchCompleted reports a knowledge base search.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ErrorOccurred reports a failure outside a task or search.
type ErrorOccurred struct {
	Err error
}

// Quit exits the program.
type Quit struct{}
