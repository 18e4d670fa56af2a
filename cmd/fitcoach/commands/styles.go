// ABOUTME: Lipgloss styles for terminal output
// ABOUTME: Shared colour palette for chat, sources, and status lines
package commands

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	coachStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true)
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
)
