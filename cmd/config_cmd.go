package cmd

import (
	"fmt"

	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	path := configPath()

	fmt.Fprintf(out, "  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Goal]")
	fmt.Fprintf(out, "    Start weight:     %.1f kg\n", cfg.Goal.StartWeight)
	fmt.Fprintf(out, "    Goal weight:      %.1f kg\n", cfg.Goal.GoalWeight)
	fmt.Fprintf(out, "    Start date:       %s\n", cfg.Goal.StartDate)
	fmt.Fprintf(out, "    Weekly loss rate: %.2f kg\n", cfg.Goal.WeeklyLossRate)
	if goal, err := cfg.GoalConfig(); err != nil {
		fmt.Fprintf(out, "    Invalid:          %v\n", err)
	} else if d, ok := pipeline.GoalReachedDate(goal); ok {
		fmt.Fprintf(out, "    Goal reached:     %s\n", d.Format("02-01-2006"))
	}
	fmt.Fprintln(out)

	storePath := flagStore
	if storePath == "" {
		storePath = config.StorePath(cfg)
	}
	fmt.Fprintln(out, "  [Storage]")
	fmt.Fprintf(out, "    Backend: %s\n", cfg.Storage.Backend)
	fmt.Fprintf(out, "    Path:    %s\n", storePath)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Input]")
	fmt.Fprintf(out, "    Accepted range: %.1f - %.1f kg\n", cfg.Input.MinWeight, cfg.Input.MaxWeight)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Server]")
	fmt.Fprintf(out, "    Address:       %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Log]")
	fmt.Fprintf(out, "    Mode:  %s\n", cfg.Log.Mode)
	fmt.Fprintf(out, "    Level: %s\n", cfg.Log.Level)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `weightlog setup` to reconfigure.")
	return nil
}
