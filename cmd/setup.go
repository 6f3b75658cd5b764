package cmd

import (
	"fmt"

	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set your goal, input range and theme",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(&vals, cfg.Input).Run(); err != nil {
		return fmt.Errorf("setup form: %w", err)
	}
	if err := vals.Apply(&cfg); err != nil {
		return err
	}
	if _, err := cfg.GoalConfig(); err != nil {
		return err
	}

	path := configPath()
	if err := config.SaveTo(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Saved to %s\n", path)
	fmt.Fprintln(out, "  Run `weightlog setup` anytime to reconfigure.")
	fmt.Fprintln(out)
	return nil
}
