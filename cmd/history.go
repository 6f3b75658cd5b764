package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistorySince string
	flagHistoryUntil string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Logged weights next to the trajectory",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 0, "Show only the newest N days (0 = all)")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "First date to show")
	historyCmd.Flags().StringVar(&flagHistoryUntil, "until", "", "Last date to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	l := rt.store.Load()
	if l.IsEmpty() {
		fmt.Fprintf(out, "\n  %s\n\n", emptyLogMessage)
		return nil
	}

	since, until, err := parseRange(flagHistorySince, flagHistoryUntil)
	if err != nil {
		return err
	}

	rows := filterRows(pipeline.BuildSeries(l, rt.goal).Rows(), since, until)
	if flagHistoryLimit > 0 && len(rows) > flagHistoryLimit {
		rows = rows[len(rows)-flagHistoryLimit:]
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(historyTable(rows)))
	return nil
}

// parseRange parses optional --since/--until dates; empty means unbounded.
func parseRange(sinceArg, untilArg string) (since, until time.Time, err error) {
	if sinceArg != "" {
		if since, err = cli.ParseDate(sinceArg); err != nil {
			return since, until, fmt.Errorf("--since: %w", err)
		}
	}
	if untilArg != "" {
		if until, err = cli.ParseDate(untilArg); err != nil {
			return since, until, fmt.Errorf("--until: %w", err)
		}
	}
	return since, until, nil
}

// filterRows keeps rows whose date falls within [since, until]; zero bounds
// are open.
func filterRows(rows []pipeline.SeriesRow, since, until time.Time) []pipeline.SeriesRow {
	if since.IsZero() && until.IsZero() {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if !since.IsZero() && r.Date.Before(since) {
			continue
		}
		if !until.IsZero() && r.Date.After(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func historyTable(rows []pipeline.SeriesRow) cli.Table {
	t := cli.Table{
		Title:   "History",
		Headers: []string{"Date", "Weight", "Trajectory", "Difference"},
	}
	for _, r := range rows {
		observed, projected, diff := "-", "-", "-"
		if r.Observed != nil {
			observed = cli.FormatWeight(*r.Observed)
		}
		if r.Projected != nil {
			projected = cli.FormatWeight(*r.Projected)
		}
		if r.Difference != nil {
			diff = cli.FormatDelta(*r.Difference)
		}
		t.Rows = append(t.Rows, []string{cli.FormatDate(r.Date), observed, projected, diff})
	}
	return t
}
