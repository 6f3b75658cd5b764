package components

import (
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// a transient message (or the store path) on the right.
func RenderStatusBar(width int, storePath, message string, isError bool) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rightStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := " [l]og  [e]xport  [r]eload  [?]help  [q]uit"
	right := storePath
	if message != "" {
		right = message
		rightStyle = rightStyle.Foreground(t.Green)
		if isError {
			rightStyle = rightStyle.Foreground(t.Red)
		}
	}
	right += " "

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		// Drop the right side before truncating key hints.
		right = ""
		pad = max(width-lipgloss.Width(left), 0)
	}

	return hintStyle.Render(left) + barStyle.Render(repeat(" ", pad)) + rightStyle.Render(right)
}
