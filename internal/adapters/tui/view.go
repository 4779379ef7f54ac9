package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the build list next to the log pane.
func (m *Model) View() string {
	if m.Viewport.Height == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.buildList(),
		m.logPane(),
	)
}

func (m *Model) buildList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("BUILDS") + "\n\n")

	builds := m.Builds
	if m.ListHeight > 0 && len(builds) > m.ListHeight-1 {
		builds = builds[len(builds)-(m.ListHeight-1):]
	}
	for _, b := range builds {
		var style lipgloss.Style
		var icon string

		switch b.Status {
		case StatusDone:
			style, icon = buildDoneStyle, "✓"
		case StatusError:
			style, icon = buildErrorStyle, "✗"
		default:
			style, icon = buildRunningStyle, "●"
		}

		line := fmt.Sprintf("%s #%d", icon, b.ID)
		if b.Status == StatusDone {
			line += fmt.Sprintf(" (%d libs)", b.Libraries)
		}
		s.WriteString(style.Render(line) + "\n")
	}

	s.WriteString(footerStyle.Render(fmt.Sprintf("%d asset updates", m.Assets)))
	return listStyle.Render(s.String())
}

func (m *Model) logPane() string {
	header := "LOGS (Manual)"
	if m.AutoScroll {
		header = "LOGS (Following)"
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			titleStyle.Render(header),
			m.Viewport.View(),
		),
	)
}

// WrapLog soft-wraps s to width columns. Non-positive widths leave s unchanged.
func WrapLog(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
