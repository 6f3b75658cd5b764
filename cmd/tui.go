package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/tui"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUIExportDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUIExportDir, "export-dir", ".", "Directory the e key exports to")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// The TUI owns the terminal; keep diagnostics to errors.
	flagQuiet = true

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if name := rt.cfg.Appearance.Theme; !theme.Valid(name) {
		cmd.PrintErrf("  Unknown theme %q, using default (available: %s)\n", name, strings.Join(theme.Names(), ", "))
	}
	theme.SetActive(rt.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app, err := tui.NewApp(tui.Options{
		Store:      rt.store,
		Config:     rt.cfg,
		ConfigPath: rt.configPath,
		Logger:     rt.log,
		ExportDir:  flagTUIExportDir,
		NeedSetup:  !config.Exists(rt.configPath),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
