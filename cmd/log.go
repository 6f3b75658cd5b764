package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/client"
	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/tui"

	"github.com/spf13/cobra"
)

var (
	flagLogDate        string
	flagLogInteractive bool
	flagLogRemote      string
)

var logCmd = &cobra.Command{
	Use:   "log [kg]",
	Short: "Record today's (or --date) weight",
	Example: `  weightlog log 101.9
  weightlog log 101,7 --date 09-07-2025
  weightlog log --interactive
  weightlog log 101.9 --remote 127.0.0.1:8788`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVarP(&flagLogDate, "date", "D", "", "Date as YYYY-MM-DD or DD-MM-YYYY (default today)")
	logCmd.Flags().BoolVarP(&flagLogInteractive, "interactive", "i", false, "Enter weight and date in a form")
	logCmd.Flags().StringVar(&flagLogRemote, "remote", "", "Send to a running `weightlog serve` at this address instead")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	if flagLogRemote != "" {
		return runLogRemote(cmd, args)
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	prev := rt.store.Load()
	date, weight, err := readObservation(args, prev, rt.cfg.Input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	l := pipeline.Upsert(prev, date, weight)
	if err := rt.store.Save(l); err != nil {
		return fmt.Errorf("saving log: %w", err)
	}
	if old, ok := prev.Lookup(date); ok && old.Weight != weight {
		fmt.Fprintf(out, "  %s\n", cli.Muted("Replaced "+cli.FormatWeight(old.Weight)))
	}
	rt.log.Info("observation logged", "date", cli.FormatISODate(date), "weight", weight, "entries", l.Len())

	fmt.Fprintf(out, "  Logged %s for %s\n", cli.FormatWeight(weight), cli.FormatDate(date))
	return nil
}

// runLogRemote posts the observation to a running server. The local store
// is never opened.
func runLogRemote(cmd *cobra.Command, args []string) error {
	rt, err := loadSettings("")
	if err != nil {
		return err
	}
	defer rt.Close()

	date, weight, err := readObservation(args, nil, rt.cfg.Input)
	if err != nil {
		return err
	}
	c := client.New(flagLogRemote)
	if err := c.LogObservation(cmd.Context(), date, weight); err != nil {
		return err
	}
	rt.log.Info("observation sent", "date", cli.FormatISODate(date), "weight", weight, "server", c.BaseURL())
	fmt.Fprintf(cmd.OutOrStdout(), "  Logged %s for %s on %s\n", cli.FormatWeight(weight), cli.FormatDate(date), c.BaseURL())
	return nil
}

// readObservation takes the weight and date from the arguments, or from the
// form when --interactive is set.
func readObservation(args []string, prev model.Log, in config.InputConfig) (time.Time, float64, error) {
	if !flagLogInteractive {
		if len(args) == 0 {
			return time.Time{}, 0, errors.New("missing weight: pass it as an argument or use --interactive")
		}
		return parseLogArgs(args[0], flagLogDate, in.MinWeight, in.MaxWeight)
	}

	latest := 0.0
	if o, ok := prev.Latest(); ok {
		latest = o.Weight
	}
	vals, err := logFormValues(args, flagLogDate, latest)
	if err != nil {
		return time.Time{}, 0, err
	}
	if err := tui.NewLogForm(&vals, in).Run(); err != nil {
		return time.Time{}, 0, fmt.Errorf("log form: %w", err)
	}
	return vals.Parse(in)
}

// logFormValues pre-fills the form. A weight or --date given on the command
// line takes precedence over the latest logged weight and today.
func logFormValues(args []string, dateArg string, latest float64) (tui.LogValues, error) {
	date := model.Today()
	if dateArg != "" {
		d, err := cli.ParseDate(dateArg)
		if err != nil {
			return tui.LogValues{}, err
		}
		date = d
	}
	if len(args) == 1 {
		w, err := cli.ParseWeight(args[0])
		if err != nil {
			return tui.LogValues{}, err
		}
		latest = w
	}
	return tui.NewLogValues(date, latest), nil
}

// parseLogArgs validates the weight and date given on the command line.
// An empty date means today.
func parseLogArgs(weightArg, dateArg string, minW, maxW float64) (time.Time, float64, error) {
	w, err := cli.ParseWeight(weightArg)
	if err != nil {
		return time.Time{}, 0, err
	}
	if err := pipeline.ValidateWeight(w, minW, maxW); err != nil {
		return time.Time{}, 0, err
	}
	if dateArg == "" {
		return model.Today(), w, nil
	}
	d, err := cli.ParseDate(dateArg)
	if err != nil {
		return time.Time{}, 0, err
	}
	return d, w, nil
}
