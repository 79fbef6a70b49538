package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("25")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	normalStyle = lipgloss.NewStyle().
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2).
			Width(56)

	// one colour per appointment status
	statusStyles = map[string]lipgloss.Style{
		"scheduled":   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"confirmed":   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		"completed":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"cancelled":   lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true),
		"rescheduled": lipgloss.NewStyle().Foreground(lipgloss.Color("177")),
	}
)
