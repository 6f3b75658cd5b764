package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/tui/components"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	tabOverview = iota
	tabHistory
)

func (a App) renderOverviewTab(cw, h int) string {
	t := theme.Active
	if a.data.IsEmpty() {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Overview",
			muted.Render("No weight logged yet. Press l to add your first entry."), cw)
	}

	s := a.summary
	g := a.goal
	var b strings.Builder

	// Row 1: metric cards
	lostTone := components.ToneGood
	if s.TotalLost < 0 {
		lostTone = components.ToneBad
	}
	schedTone := components.ToneGood
	schedDelta := "ahead of schedule"
	if s.AheadBy < 0 {
		schedTone = components.ToneBad
		schedDelta = "behind schedule"
	}
	remainingDelta := "to " + cli.FormatWeight(g.GoalWeight)
	if s.Remaining <= 0 {
		remainingDelta = "goal reached"
	}

	cards := []components.Metric{
		{Label: "Current", Value: cli.FormatWeight(s.CurrentWeight), Delta: cli.FormatDate(s.LatestDate)},
		{Label: "Lost", Value: cli.FormatWeight(s.TotalLost), Delta: "since " + cli.FormatDate(g.StartDate), Tone: lostTone},
		{Label: "Remaining", Value: cli.FormatWeight(max(s.Remaining, 0)), Delta: remainingDelta},
		{Label: "Schedule", Value: cli.FormatDelta(s.AheadBy), Delta: schedDelta, Tone: schedTone},
	}
	if a.isCompactLayout() {
		cards = cards[:2]
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: goal progress
	inner := components.CardInnerWidth(cw)
	var goalBody strings.Builder
	if a.isCompactLayout() {
		goalBody.WriteString(components.ProgressBar(s.Progress, inner-5))
	} else {
		goalBody.WriteString(components.GoalBar(s.Progress,
			cli.FormatWeight(g.StartWeight), cli.FormatWeight(g.GoalWeight), inner))
	}
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	goalBody.WriteString("\n")
	line := fmt.Sprintf("Trajectory %s today, %s/week", cli.FormatWeight(s.ProjectedToday), cli.FormatWeight(g.WeeklyLossRate))
	if d, ok := pipeline.GoalReachedDate(g); ok {
		line += ", reaches goal " + cli.FormatDate(d)
	}
	goalBody.WriteString(muted.Render(line))
	b.WriteString(components.ContentCard("Goal", goalBody.String(), cw))
	b.WriteString("\n")

	// Row 3: chart and recent entries
	used := lipgloss.Height(b.String())
	chartH := max(h-used-2, 8)

	if a.isCompactLayout() {
		chart := components.LineChart(a.series, inner, chartH)
		b.WriteString(components.ContentCard("Weight vs. trajectory", chart, cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 3)
	chartW := halves[0] + halves[1]
	recentW := halves[2]
	chart := components.LineChart(a.series, components.CardInnerWidth(chartW), chartH)
	chartCard := components.ContentCard("Weight vs. trajectory", chart, chartW)
	recentCard := components.ContentCard("Recent", a.renderRecent(recentW, chartH), recentW)
	b.WriteString(components.CardRow([]string{chartCard, recentCard}))

	return b.String()
}

// renderRecent lists the newest entries with their difference to the
// trajectory.
func (a App) renderRecent(w, h int) string {
	t := theme.Active
	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	n := min(len(a.rows), recentEntries, max(h, 1))
	innerW := components.CardInnerWidth(w)

	var b strings.Builder
	for i, r := range a.rows[:n] {
		if i > 0 {
			b.WriteString("\n")
		}
		line := dateStyle.Render(cli.FormatDate(r.Date)) + valueStyle.Render("  "+cli.FormatWeight(*r.Observed))
		if r.Difference != nil && lipgloss.Width(line)+10 <= innerW {
			line += "  " + diffStyle(*r.Difference).Render(cli.FormatDelta(*r.Difference))
		}
		b.WriteString(line)
	}
	return b.String()
}

// diffStyle colors an observed-minus-projected difference: below the
// trajectory is good.
func diffStyle(diff float64) lipgloss.Style {
	t := theme.Active
	st := lipgloss.NewStyle().Background(t.Surface)
	switch {
	case diff < 0:
		return st.Foreground(t.Green)
	case diff > 0:
		return st.Foreground(t.Orange)
	default:
		return st.Foreground(t.TextMuted)
	}
}
