package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorIris  = lipgloss.Color("#5D3FD3")
	colorSlate = lipgloss.Color("#667085")
	colorWhite = lipgloss.Color("#FFFFFF")

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(colorSlate).
			MarginRight(1).
			PaddingRight(1)

	logStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	buildRunningStyle = lipgloss.NewStyle().
				Foreground(colorIris).
				Bold(true)

	buildDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	buildErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSlate).
			Faint(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(colorIris).
			Foreground(colorWhite)
)
