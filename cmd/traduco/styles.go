package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the TUI.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan

	// File queue styles.
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue
	fileStyle     = lipgloss.NewStyle().PaddingLeft(1)
	fileDoneStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("2")) // green

	// Run status styles.
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta

	// Result styles.
	resultStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("2")) // green

	// Error block style.
	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("1"))

	// General utility styles.
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray/dim
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true)
)
