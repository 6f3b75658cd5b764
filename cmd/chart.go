package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/weightlog/internal/export"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/tui/components"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/spf13/cobra"
)

var (
	flagChartPNG    string
	flagChartWidth  int
	flagChartHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Plot logged weight against the trajectory",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVar(&flagChartPNG, "png", "", "Write a PNG chart to this file instead of the terminal")
	chartCmd.Flags().IntVar(&flagChartWidth, "width", 0, "Chart width (columns, or pixels with --png)")
	chartCmd.Flags().IntVar(&flagChartHeight, "height", 0, "Chart height (rows, or pixels with --png)")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	series := pipeline.BuildSeries(rt.store.Load(), rt.goal)
	out := cmd.OutOrStdout()

	if flagChartPNG != "" {
		f, err := os.Create(flagChartPNG) //nolint:gosec // output path is chosen by the user
		if err != nil {
			return fmt.Errorf("creating chart file: %w", err)
		}
		if err := export.RenderChartPNG(f, series, flagChartWidth, flagChartHeight); err != nil {
			_ = f.Close()
			return fmt.Errorf("rendering chart: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
		fmt.Fprintf(out, "  Wrote %s\n", flagChartPNG)
		return nil
	}

	theme.SetActive(rt.cfg.Appearance.Theme)
	w := flagChartWidth
	if w <= 0 {
		w = 80
	}
	h := flagChartHeight
	if h <= 0 {
		h = 20
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, components.LineChart(series, w, h))
	fmt.Fprintln(out)
	return nil
}
