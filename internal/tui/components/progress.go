package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForProgress returns a color that warms up as the goal gets closer.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.GreenBright
	case pct >= 0.75:
		return t.Green
	case pct >= 0.4:
		return t.Accent
	default:
		return t.Cyan
	}
}

// ProgressBar renders a plain block bar with percentage, used where GoalBar's
// labels don't fit.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)
	filled := int(pct * float64(width))

	c := ColorForProgress(pct)
	filledStyle := lipgloss.NewStyle().Foreground(c).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(c).Background(t.Surface).Bold(true)

	return filledStyle.Render(repeat("█", filled)) +
		emptyStyle.Render(repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// GoalBar renders a labeled goal progress bar: start weight on the left,
// goal weight on the right, fill by covered fraction.
func GoalBar(pct float64, startLabel, goalLabel string, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(ColorForProgress(pct)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	pctStr := fmt.Sprintf("%3.0f%%", pct*100)
	barW := width - lipgloss.Width(startLabel) - lipgloss.Width(goalLabel) - len(pctStr) - 3
	barW = max(barW, 4)

	bar := progress.New(
		progress.WithGradient(string(t.Cyan), string(t.GreenBright)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return labelStyle.Render(startLabel) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		labelStyle.Render(goalLabel) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pctStr)
}

func repeat(s string, n int) string {
	return strings.Repeat(s, max(n, 0))
}
