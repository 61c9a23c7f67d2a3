package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			PaddingLeft(1).
			PaddingRight(1)

	avatarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			PaddingLeft(1).
			PaddingRight(1)

	statStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true)

	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Strikethrough(true)
	pendingStyle = lipgloss.NewStyle()
	pointsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
