package tui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/hotswap/internal/adapters/tui"
	"go.trai.ch/hotswap/internal/core/domain"
)

func TestView_Initialization(t *testing.T) {
	m := tui.NewModel()
	assert.Contains(t, m.View(), "Initializing...")
}

func TestView_BuildList(t *testing.T) {
	m := tui.NewModel()
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})
	m = update(t, m, tui.MsgEvent{Event: domain.BuildStarted(1)})
	m = update(t, m, tui.MsgEvent{Event: domain.BuildEnded(1, "libgame.so", []domain.HashedFileRecord{{Name: "libgame.so"}})})
	m = update(t, m, tui.MsgEvent{Event: domain.BuildStarted(2)})
	m = update(t, m, tui.MsgEvent{Event: domain.BuildFailed(2, "boom")})
	m = update(t, m, tui.MsgEvent{Event: domain.BuildStarted(3)})

	output := m.View()

	assert.Contains(t, output, "BUILDS")
	assert.Contains(t, output, "#1")
	assert.Contains(t, output, "(1 libs)")
	assert.Contains(t, output, "✓")
	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "●")
	assert.Contains(t, output, "0 asset updates")
	assert.Contains(t, output, "LOGS (Following)")
}

func TestView_ListShowsNewestBuilds(t *testing.T) {
	m := tui.NewModel()
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 6})
	for id := domain.BuildID(1); id <= 10; id++ {
		m = update(t, m, tui.MsgEvent{Event: domain.BuildStarted(id)})
	}

	output := m.View()

	assert.Contains(t, output, "#10")
	assert.NotContains(t, output, "#1 ")
}

func TestWrapLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{name: "width 0", input: "hello world", width: 0, expected: "hello world"},
		{name: "negative width", input: "hello world", width: -5, expected: "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tui.WrapLog(tt.input, tt.width))
		})
	}

	t.Run("wraps long lines", func(t *testing.T) {
		input := "hello world this is a long line"
		got := tui.WrapLog(input, 10)

		assert.Contains(t, got, "\n")
		for _, line := range strings.Split(got, "\n") {
			assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 10)
		}
		assert.Equal(t, strings.Join(strings.Fields(input), " "), strings.Join(strings.Fields(got), " "))
	})
}
