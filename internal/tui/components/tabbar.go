package components

import (
	"strings"

	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  string
}

// Tabs defines the dashboard views. The shortcut is the first letter.
var Tabs = []Tab{
	{Name: "Overview", Key: "o"},
	{Name: "History", Key: "h"},
}

// TabIdxByKey returns the tab index for a key press, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabVisualWidth returns the rendered width of a tab label.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	inactive := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	pad := lipgloss.NewStyle().Background(t.Surface)
	return pad.Render(" ") + key.Render(tab.Name[:1]) + inactive.Render(tab.Name[1:]) + pad.Render(" ")
}

// RenderTabBar renders the tab bar with a title on the left, padded to width.
func RenderTabBar(title string, activeIdx, width int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)
	fill := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}

	row := titleStyle.Render(" ◈ "+title+" ") + sepStyle.Render("│") + strings.Join(parts, sepStyle.Render("│"))
	if pad := width - lipgloss.Width(row); pad > 0 {
		row += fill.Render(strings.Repeat(" ", pad))
	}
	return row
}

// TabAtX returns the tab index under column x of a bar rendered by
// RenderTabBar, or -1.
func TabAtX(title string, activeIdx, x int) int {
	pos := lipgloss.Width(" ◈ "+title+" ") + 1
	for i, tab := range Tabs {
		w := TabVisualWidth(tab, i == activeIdx)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}
