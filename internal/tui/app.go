// Package tui provides the interactive Bubble Tea dashboard for weightlog.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/export"
	"github.com/theirongolddev/weightlog/internal/logger"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/store"
	"github.com/theirongolddev/weightlog/internal/tui/components"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the store has been read.
type DataLoadedMsg struct {
	Log      model.Log
	LoadTime time.Duration
}

// SavedMsg is sent after an observation was upserted and persisted.
type SavedMsg struct {
	Log    model.Log
	Date   time.Time
	Weight float64
	Err    error
}

// ExportedMsg is sent when the spreadsheet export finishes.
type ExportedMsg struct {
	Path string
	Err  error
}

// Options configures NewApp.
type Options struct {
	Store      store.Store
	Config     config.Config
	ConfigPath string
	Logger     *logger.Logger
	// ExportDir receives gewicht_log.xlsx on `e`. Defaults to the working directory.
	ExportDir string
	// NeedSetup shows the setup wizard after loading.
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	store      store.Store
	cfg        config.Config
	configPath string
	goal       model.GoalConfig
	log        *logger.Logger
	exportDir  string

	// Data
	data     model.Log
	summary  model.Summary
	series   pipeline.Series
	rows     []pipeline.SeriesRow // newest first
	loaded   bool
	loadTime time.Duration
	busy     bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	hist      historyState
	status    string
	statusErr bool

	// Log-weight form
	logForm *huh.Form
	logVals LogValues

	// First-run setup
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	appTitle         = "weightlog"
	minTerminalWidth = 60
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5
	recentEntries    = 7
)

// NewApp creates a new TUI app model. cfg.Goal must already be valid.
func NewApp(opts Options) (App, error) {
	goal, err := opts.Config.GoalConfig()
	if err != nil {
		return App{}, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	dir := opts.ExportDir
	if dir == "" {
		dir = "."
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		store:      opts.Store,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		goal:       goal,
		log:        log,
		exportDir:  dir,
		needSetup:  opts.NeedSetup,
		spinner:    sp,
	}, nil
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.store),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	a.summary = model.Summary{}
	if !a.data.IsEmpty() {
		a.summary = pipeline.Summarize(a.data, a.goal)
	}
	a.series = pipeline.BuildSeries(a.data, a.goal)

	rows := a.series.Rows()
	a.rows = make([]pipeline.SeriesRow, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Observed != nil {
			a.rows = append(a.rows, rows[i])
		}
	}
	a.hist.clamp(len(a.rows))
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(min(msg.Width, 70)).WithHeight(msg.Height)
		}
		if a.logForm != nil {
			a.logForm = a.logForm.WithWidth(min(msg.Width, 60))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.logForm != nil || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.logForm != nil {
			return a.updateLogForm(msg)
		}
		return a.updateKeys(msg)

	case DataLoadedMsg:
		a.data = msg.Log
		a.loaded = true
		a.busy = false
		a.loadTime = msg.LoadTime
		a.recompute()

		if a.needSetup {
			a.setupVals = NewSetupValues(a.cfg)
			a.setupForm = NewSetupForm(&a.setupVals, a.cfg.Input)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(min(a.width, 70)).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case SavedMsg:
		a.busy = false
		if msg.Err != nil {
			a.log.Error("saving observation", "error", msg.Err)
			a.setStatus("Save failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.data = msg.Log
		a.recompute()
		a.setStatus(fmt.Sprintf("Logged %s for %s", cli.FormatWeight(msg.Weight), cli.FormatDate(msg.Date)), false)
		return a, nil

	case ExportedMsg:
		a.busy = false
		if msg.Err != nil {
			a.log.Error("exporting spreadsheet", "error", msg.Err)
			a.setStatus("Export failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.setStatus("Exported "+msg.Path, false)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward cursor blinks and other internal messages to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.logForm != nil {
		return a.updateLogForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q", "esc":
		return a, tea.Quit
	case "l", "n":
		return a.openLogForm()
	case "r":
		if a.busy {
			return a, nil
		}
		a.busy = true
		a.setStatus("", false)
		return a, loadDataCmd(a.store)
	case "e":
		if a.busy {
			return a, nil
		}
		a.busy = true
		return a, exportCmd(a.data, a.exportDir)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if idx := components.TabIdxByKey(key); idx >= 0 {
		a.activeTab = idx
		return a, nil
	}

	if a.activeTab == tabHistory {
		a.hist.handleKey(key, len(a.rows), a.historyVisibleRows())
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabHistory {
			a.hist.handleKey("k", len(a.rows), a.historyVisibleRows())
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabHistory {
			a.hist.handleKey("j", len(a.rows), a.historyVisibleRows())
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := components.TabAtX(appTitle, a.activeTab, msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) openLogForm() (tea.Model, tea.Cmd) {
	latest := 0.0
	if o, ok := a.data.Latest(); ok {
		latest = o.Weight
	}
	a.logVals = NewLogValues(model.Today(), latest)
	a.logForm = NewLogForm(&a.logVals, a.cfg.Input)
	if a.width > 0 {
		a.logForm = a.logForm.WithWidth(min(a.width, 60))
	}
	a.setStatus("", false)
	return a, a.logForm.Init()
}

func (a App) updateLogForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.logForm = nil
		return a, nil
	}

	form, cmd := a.logForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.logForm = f
	}

	switch a.logForm.State {
	case huh.StateCompleted:
		a.logForm = nil
		date, weight, err := a.logVals.Parse(a.cfg.Input)
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.busy = true
		return a, saveObservationCmd(a.store, date, weight)
	case huh.StateAborted:
		a.logForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.saveSetupConfig()
		a.setupForm = nil
		a.needSetup = false
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

// saveSetupConfig applies the wizard to the config and persists it. A
// storage backend change takes effect on the next start.
func (a *App) saveSetupConfig() {
	cfg := a.cfg
	if err := a.setupVals.Apply(&cfg); err != nil {
		a.setStatus("Setup not saved: "+err.Error(), true)
		return
	}
	goal, err := cfg.GoalConfig()
	if err != nil {
		a.setStatus("Setup not saved: "+err.Error(), true)
		return
	}

	path := a.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.SaveTo(path, cfg); err != nil {
		a.log.Error("saving config", "path", path, "error", err)
		a.setStatus("Could not save config: "+err.Error(), true)
	} else {
		a.setStatus("Saved "+path, false)
	}

	a.cfg = cfg
	a.goal = goal
	theme.SetActive(cfg.Appearance.Theme)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.viewForm("Setup", a.setupForm.View())
	}
	if a.logForm != nil {
		return a.viewForm("Log weight", a.logForm.View())
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  weightlog needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ weightlog"))
	b.WriteString(subtitleStyle.Render(" · weight progress"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Reading " + filepath.Base(a.store.Path()) + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm(title, body string) string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)

	card := cardStyle.Render(titleStyle.Render("◈ "+title) + "\n\n" + body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o h", "Overview / History"},
			{"← → tab", "Previous / Next view"},
			{"j k", "Move through history"},
			{"g G", "Newest / Oldest entry"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"l", "Log a weight"},
			{"e", "Export " + export.XLSXFilename},
			{"r", "Reload from disk"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	header := components.RenderTabBar(appTitle, a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.store.Path(), a.status, a.statusErr)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	default:
		content = a.renderOverviewTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func loadDataCmd(st store.Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		l := st.Load()
		return DataLoadedMsg{Log: l, LoadTime: time.Since(start)}
	}
}

// saveObservationCmd re-reads the store before upserting so edits made by
// another process since the last load are kept.
func saveObservationCmd(st store.Store, date time.Time, weight float64) tea.Cmd {
	return func() tea.Msg {
		l := pipeline.Upsert(st.Load(), date, weight)
		if err := st.Save(l); err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Log: l, Date: date, Weight: weight}
	}
}

func exportCmd(l model.Log, dir string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, export.XLSXFilename)
		f, err := os.Create(path) //nolint:gosec // export dir is chosen by the user
		if err != nil {
			return ExportedMsg{Err: err}
		}
		if err := export.WriteXLSX(f, l); err != nil {
			_ = f.Close()
			return ExportedMsg{Err: err}
		}
		if err := f.Close(); err != nil {
			return ExportedMsg{Err: err}
		}
		return ExportedMsg{Path: path}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
