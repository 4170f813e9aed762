package output

import (
	"github.com/charmbracelet/lipgloss"

	"todosync/internal/state"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true)
)

// Prompt renders the shell prompt. A failed last operation is marked.
func Prompt(app state.AppState) string {
	p := promptStyle.Render("todosync>") + " "
	if app.Status == state.StatusFailed {
		p = errorStyle.Render("✗") + " " + p
	}
	return p
}

// Banner renders the global error line, or "" when there is none.
func Banner(app state.AppState) string {
	if app.Error == "" {
		return ""
	}
	return errorStyle.Render("error: " + app.Error)
}

// Progress renders the line shown while a request is in flight.
func Progress() string {
	return progressStyle.Render("syncing...")
}
