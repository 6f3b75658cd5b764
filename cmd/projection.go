package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagProjectionThrough string
	flagProjectionEvery   int
)

var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Projected weight per day toward the goal",
	RunE:  runProjection,
}

func init() {
	projectionCmd.Flags().StringVar(&flagProjectionThrough, "through", "", "Last date (default: the goal date, or today)")
	projectionCmd.Flags().IntVar(&flagProjectionEvery, "every", 7, "Show every Nth day")
	rootCmd.AddCommand(projectionCmd)
}

func runProjection(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	goal, err := cfg.GoalConfig()
	if err != nil {
		return err
	}

	through, err := projectionEnd(goal, flagProjectionThrough)
	if err != nil {
		return err
	}
	every := max(flagProjectionEvery, 1)

	t := cli.Table{
		Title:   fmt.Sprintf("Projection at %s/week", cli.FormatWeight(goal.WeeklyLossRate)),
		Headers: []string{"Date", "Day", "Projected"},
	}
	i := 0
	var last model.ProjectionPoint
	for p := range pipeline.Project(goal, through) {
		if i%every == 0 {
			t.Rows = append(t.Rows, []string{cli.FormatDate(p.Date), fmt.Sprintf("%d", i), cli.FormatWeight(p.Weight)})
		}
		last = p
		i++
	}
	out := cmd.OutOrStdout()
	if i == 0 {
		fmt.Fprintf(out, "\n  No projection before the start date %s.\n\n", cli.FormatDate(goal.StartDate))
		return nil
	}
	// Always end on the requested date.
	if (i-1)%every != 0 {
		t.Rows = append(t.Rows, []string{cli.FormatDate(last.Date), fmt.Sprintf("%d", i-1), cli.FormatWeight(last.Weight)})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(t))
	return nil
}

// projectionEnd resolves --through: an explicit date, else the day the goal
// is reached, else today.
func projectionEnd(goal model.GoalConfig, through string) (time.Time, error) {
	if through != "" {
		return cli.ParseDate(through)
	}
	if d, ok := pipeline.GoalReachedDate(goal); ok {
		return d, nil
	}
	return model.Today(), nil
}
