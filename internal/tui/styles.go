package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	overlayBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			PaddingRight(1)

	selectedItemStyle = lipgloss.NewStyle().Bold(true)

	questionStyle = lipgloss.NewStyle().Bold(true)
	verdictStyle  = lipgloss.NewStyle().Faint(true)
)
