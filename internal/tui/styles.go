package tui

import "github.com/charmbracelet/lipgloss"

const cellWidth = 6

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	cellBase = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder())

	FaceDownStyle = cellBase.
			BorderForeground(lipgloss.Color("#626262")).
			Foreground(lipgloss.Color("#626262"))

	RevealedStyle = cellBase.
			BorderForeground(lipgloss.Color("#FFD700")).
			Bold(true)

	MatchedStyle = cellBase.
			BorderForeground(lipgloss.Color("#96CEB4")).
			Faint(true)

	CursorStyle = cellBase.
			BorderForeground(lipgloss.Color("#FF6B6B")).
			BorderStyle(lipgloss.ThickBorder())

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	WinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)
