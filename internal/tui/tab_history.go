package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/tui/components"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// historyState holds the history tab cursor. Rows are newest first.
type historyState struct {
	cursor int
	offset int
}

func (hs *historyState) clamp(n int) {
	if n == 0 {
		hs.cursor, hs.offset = 0, 0
		return
	}
	hs.cursor = min(max(hs.cursor, 0), n-1)
	hs.offset = min(max(hs.offset, 0), hs.cursor)
}

func (hs *historyState) handleKey(key string, n, visible int) {
	switch key {
	case "j", "down":
		hs.cursor++
	case "k", "up":
		hs.cursor--
	case "g", "home":
		hs.cursor = 0
	case "G", "end":
		hs.cursor = n - 1
	case "pgdown", "ctrl+d":
		hs.cursor += max(visible/2, 1)
	case "pgup", "ctrl+u":
		hs.cursor -= max(visible/2, 1)
	default:
		return
	}
	hs.clamp(n)
	if visible > 0 && hs.cursor >= hs.offset+visible {
		hs.offset = hs.cursor - visible + 1
	}
}

// historyVisibleRows is the number of table rows that fit in the card.
func (a App) historyVisibleRows() int {
	// tab bar (1) + status bar (1) + card border (2) + header and rule (2) + footer (2)
	return max(a.height-8, 3)
}

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.rows) == 0 {
		return components.ContentCard("History", muted.Render("No weight logged yet"), cw)
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)

	innerW := components.CardInnerWidth(cw)
	visible := min(a.historyVisibleRows(), max(h-6, 3))

	hs := a.hist
	if hs.cursor >= hs.offset+visible {
		hs.offset = hs.cursor - visible + 1
	}
	end := min(hs.offset+visible, len(a.rows))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %10s %12s %10s", "Date", "Weight", "Trajectory", "Diff")))
	b.WriteString("\n")
	b.WriteString(muted.Render(strings.Repeat("─", min(innerW, 47))))
	b.WriteString("\n")

	for i := hs.offset; i < end; i++ {
		r := a.rows[i]
		traj, diff := "-", "-"
		if r.Projected != nil {
			traj = fmt.Sprintf("%.1f", *r.Projected)
		}
		if r.Difference != nil {
			diff = cli.FormatDelta(*r.Difference)
		}
		line := fmt.Sprintf("%-12s %10s %12s %10s", cli.FormatDate(r.Date), fmt.Sprintf("%.1f", *r.Observed), traj, diff)

		if i == hs.cursor {
			b.WriteString(selectedStyle.Render(padRight(line, innerW)))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("%d of %d entries  [j/k] move  [g/G] newest/oldest", hs.cursor+1, len(a.rows))))

	return components.ContentCard("History", b.String(), cw)
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
