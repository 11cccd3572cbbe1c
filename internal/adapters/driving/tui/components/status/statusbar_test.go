package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

func wideBar() *Bar {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	return bar
}

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Empty(t, bar.Message())
}

func TestBar_StateLabels(t *testing.T) {
	tests := []struct {
		state   State
		message string
		count   int
		want    string
	}{
		{StateReady, "", 0, "Ready"},
		{StateThinking, "", 0, "Agent working..."},
		{StateSearching, "", 0, "Searching..."},
		{StateError, "", 0, "Error"},
		{StateError, "timeout", 0, "Error: timeout"},
		{StateResults, "", 1, "1 result"},
		{StateResults, "", 3, "3 results"},
		{StateReady, "Saved", 0, "Saved"},
	}
	for _, tt := range tests {
		t.Run(string(tt.state)+"/"+tt.want, func(t *testing.T) {
			bar := wideBar()
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.count)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_Segments(t *testing.T) {
	bar := wideBar()
	bar.SetKnowledgeBase("support")
	bar.SetUsage(2, domain.Usage{InputTokens: 150, OutputTokens: 40})

	view := bar.View()

	assert.Contains(t, view, "kb: support")
	assert.Contains(t, view, "2 steps, 150 in / 40 out tokens")

	steps, usage := bar.Usage()
	assert.Equal(t, 2, steps)
	assert.Equal(t, 40, usage.OutputTokens)
}

func TestBar_NoSegmentsWithoutContext(t *testing.T) {
	assert.NotContains(t, wideBar().View(), segmentSeparator)
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()

	bar := NewBar(nil, km)
	bar.SetWidth(200)
	bar.SetHints(km.ChatHelp())
	for _, b := range km.ChatHelp() {
		assert.Contains(t, bar.View(), b.Help().Desc)
	}

	bar.SetState(StateResults)
	bar.SetResultCount(2)
	for _, b := range km.ResultsHelp() {
		assert.Contains(t, bar.View(), b.Help().Desc)
	}
}

func TestBar_ClearKeepsKnowledgeBase(t *testing.T) {
	bar := wideBar()
	bar.SetKnowledgeBase("legal")
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(4)
	bar.SetUsage(1, domain.Usage{InputTokens: 10})

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	steps, _ := bar.Usage()
	assert.Zero(t, steps)
	assert.Contains(t, bar.View(), "kb: legal")
}

func TestPluralise(t *testing.T) {
	assert.Equal(t, "0 steps", pluralise(0, "step"))
	assert.Equal(t, "1 step", pluralise(1, "step"))
	assert.Equal(t, "5 results", pluralise(5, "result"))
}
