package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("203")).
			Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	readingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	pendingGlyphStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	readyGlyphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	playingGlyphStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("226")).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	filterPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170"))
)
