package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Plot glyphs, in increasing draw priority.
const (
	glyphGoal       = '─'
	glyphProjection = '·'
	glyphObserved   = '●'
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellGoal
	cellProjection
	cellObserved
)

// Sparkline renders a unicode sparkline scaled between the series min and max.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// LineChart plots the observed weights, the projected trajectory and the
// goal line on a character grid of the given outer size. The last line is
// a legend.
func LineChart(s pipeline.Series, width, height int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	first, last, ok := s.DateRange()
	if !ok {
		return mutedStyle.Render("No weight logged yet")
	}
	if width < 20 || height < 6 {
		return Sparkline(s.Observed.Weights(), t.Observed())
	}

	// Reserve the x-axis, its labels and the legend.
	plotH := height - 3

	lo, hi := s.Bounds()
	pad := math.Max((hi-lo)*0.05, 0.5)
	lo, hi = lo-pad, hi+pad

	step := chartTickStep(hi - lo)
	for int(math.Ceil((hi-lo)/step)) > max(plotH/2, 2) {
		step *= 2
	}

	yLabelW := 0
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		yLabelW = max(yLabelW, len(formatChartLabel(v, step)))
	}
	yLabelW++

	plotW := max(width-yLabelW-1, 5)
	spanDays := max(model.DaysBetween(first, last), 1)

	colFor := func(d time.Time) int {
		c := int(math.Round(float64(model.DaysBetween(first, d)) * float64(plotW-1) / float64(spanDays)))
		return min(max(c, 0), plotW-1)
	}
	rowFor := func(w float64) int {
		r := int(math.Round((hi - w) / (hi - lo) * float64(plotH-1)))
		return min(max(r, 0), plotH-1)
	}

	grid := make([][]cellKind, plotH)
	for i := range grid {
		grid[i] = make([]cellKind, plotW)
	}
	plot := func(r, c int, k cellKind) {
		if grid[r][c] < k {
			grid[r][c] = k
		}
	}

	goalRow := rowFor(s.GoalWeight)
	for c := 0; c < plotW; c++ {
		plot(goalRow, c, cellGoal)
	}
	for _, p := range s.Projection {
		plot(rowFor(p.Weight), colFor(p.Date), cellProjection)
	}
	for _, o := range s.Observed {
		plot(rowFor(o.Weight), colFor(o.Date), cellObserved)
	}

	tickLabels := make(map[int]string)
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		tickLabels[rowFor(v)] = formatChartLabel(v, step)
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)
	kindStyle := map[cellKind]lipgloss.Style{
		cellGoal:       lipgloss.NewStyle().Foreground(t.Goal()).Background(t.Surface),
		cellProjection: lipgloss.NewStyle().Foreground(t.Projection()).Background(t.Surface),
		cellObserved:   lipgloss.NewStyle().Foreground(t.Observed()).Background(t.Surface).Bold(true),
	}
	kindGlyph := map[cellKind]rune{
		cellGoal:       glyphGoal,
		cellProjection: glyphProjection,
		cellObserved:   glyphObserved,
	}

	var b strings.Builder
	for r, row := range grid {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[r])))
		b.WriteString(axisStyle.Render("│"))

		// Merge runs of the same kind into one styled segment.
		for c := 0; c < len(row); {
			k := row[c]
			end := c
			for end < len(row) && row[end] == k {
				end++
			}
			if k == cellEmpty {
				b.WriteString(blankStyle.Render(strings.Repeat(" ", end-c)))
			} else {
				b.WriteString(kindStyle[k].Render(strings.Repeat(string(kindGlyph[k]), end-c)))
			}
			c = end
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW) + "└" + strings.Repeat("─", plotW)))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW+1) + dateAxis(first, last, plotW)))
	b.WriteString("\n")

	legend := kindStyle[cellObserved].Render(string(glyphObserved)) + mutedStyle.Render(" weight  ") +
		kindStyle[cellProjection].Render(string(glyphProjection)) + mutedStyle.Render(" projection  ") +
		kindStyle[cellGoal].Render(string(glyphGoal)) + mutedStyle.Render(" goal")
	b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)) + legend)

	return b.String()
}

// dateAxis lays out first, middle and last date labels across w columns.
func dateAxis(first, last time.Time, w int) string {
	buf := []byte(strings.Repeat(" ", w))
	put := func(pos int, lbl string) {
		pos = min(max(pos, 0), w-len(lbl))
		if pos < 0 {
			return
		}
		copy(buf[pos:], lbl)
	}

	const layout = "02-01"
	put(0, first.Format(layout))
	if days := model.DaysBetween(first, last); days > 0 {
		if w >= 3*len(layout)+4 && days > 1 {
			mid := first.AddDate(0, 0, days/2)
			put(w/2-len(layout)/2, mid.Format(layout))
		}
		if w >= 2*len(layout)+2 {
			put(w-len(layout), last.Format(layout))
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks over span.
func chartTickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	rough := span / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel prints a weight tick with as many decimals as step needs.
func formatChartLabel(v, step float64) string {
	if step >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
