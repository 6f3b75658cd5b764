package components

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func testSeries(t *testing.T) pipeline.Series {
	t.Helper()
	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	goal := model.GoalConfig{StartWeight: 102.3, GoalWeight: 89.0, StartDate: start, WeeklyLossRate: 0.64}

	log := pipeline.Upsert(nil, start, 102.3)
	log = pipeline.Upsert(log, start.AddDate(0, 0, 1), 101.9)
	log = pipeline.Upsert(log, start.AddDate(0, 0, 20), 100.2)
	return pipeline.BuildSeries(log, goal)
}

func TestLineChartDimensions(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := LineChart(testSeries(t), 60, 16)
	lines := strings.Split(out, "\n")
	if len(lines) != 16 {
		t.Fatalf("chart has %d lines, want 16", len(lines))
	}
	for i, l := range lines[:len(lines)-1] {
		if w := lipgloss.Width(l); w > 60 {
			t.Fatalf("line %d width = %d, exceeds 60", i, w)
		}
	}
}

func TestLineChartGlyphs(t *testing.T) {
	theme.SetActive("terminal")
	defer theme.SetActive("flexoki-dark")

	out := LineChart(testSeries(t), 60, 16)
	if n := strings.Count(out, string(glyphObserved)); n < 3 {
		t.Fatalf("observed markers = %d, want at least 3 (2 distinct columns + legend)", n)
	}
	if !strings.Contains(out, string(glyphProjection)) {
		t.Fatal("projection glyph missing")
	}
	if !strings.Contains(out, strings.Repeat(string(glyphGoal), 10)) {
		t.Fatal("goal line missing")
	}
	if !strings.Contains(out, "07-07") || !strings.Contains(out, "27-07") {
		t.Fatalf("date axis missing first/last label:\n%s", out)
	}
}

func TestLineChartEmpty(t *testing.T) {
	out := LineChart(pipeline.Series{GoalWeight: 89}, 60, 16)
	if !strings.Contains(out, "No weight logged yet") {
		t.Fatalf("empty chart = %q", out)
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{14, 2},
		{5, 1},
		{40, 5},
		{0, 1},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.span); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.span, got, tt.want)
		}
	}
}

func TestDateAxis(t *testing.T) {
	first := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	got := dateAxis(first, first.AddDate(0, 0, 10), 30)
	if !strings.HasPrefix(got, "07-07") || !strings.HasSuffix(got, "17-07") {
		t.Fatalf("dateAxis = %q", got)
	}
	if len(got) != 30 {
		t.Fatalf("dateAxis len = %d, want 30", len(got))
	}
}
