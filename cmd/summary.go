package cmd

import (
	"fmt"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"

	"github.com/spf13/cobra"
)

// emptyLogMessage is shown wherever a summary is requested before any
// weight was logged.
const emptyLogMessage = "No weight logged yet. Log your first weight to get started."

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Current weight, progress and schedule",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
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

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("WEIGHT PROGRESS"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummaryTable(l, rt.goal))
	if first, ok := l.First(); ok {
		fmt.Fprintf(out, "  %s\n", cli.Muted(fmt.Sprintf("%d entries since %s. Log with `weightlog log <kg>`.",
			l.Len(), cli.FormatDate(first.Date))))
	}
	fmt.Fprintln(out)
	return nil
}

func renderSummaryTable(l model.Log, goal model.GoalConfig) string {
	s := pipeline.Summarize(l, goal)

	rows := [][]string{
		{"Current weight", cli.FormatWeight(s.CurrentWeight)},
		{"Total lost", cli.FormatWeight(s.TotalLost)},
		{"Remaining", cli.FormatWeight(s.Remaining)},
		cli.SeparatorRow,
		{"Last logged", cli.FormatDate(s.LatestDate)},
		{"On plan for", cli.FormatDays(model.DaysBetween(goal.StartDate, s.LatestDate))},
		{"Trajectory", cli.FormatWeight(s.ProjectedToday)},
		{"Schedule", cli.RenderSchedule(s.AheadBy)},
	}
	if d, ok := pipeline.GoalReachedDate(goal); ok {
		left := model.DaysBetween(s.LatestDate, d)
		rows = append(rows, []string{"On track to reach goal", fmt.Sprintf("%s (%s)", cli.FormatDate(d), cli.FormatDays(max(left, 0)))})
	}
	rows = append(rows,
		cli.SeparatorRow,
		[]string{"Progress", cli.RenderProgressBar(s.Progress, 20)},
	)

	weights := l.Weights()
	if len(weights) > 1 {
		rows = append(rows, []string{"Recent", cli.RenderSparkline(weights[max(len(weights)-30, 0):])})
	}

	return cli.RenderTable(cli.Table{
		Title: fmt.Sprintf("%s → %s", cli.FormatWeight(goal.StartWeight), cli.FormatWeight(goal.GoalWeight)),
		Rows:  rows,
	})
}
