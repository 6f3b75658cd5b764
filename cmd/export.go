package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/weightlog/internal/export"
	"github.com/theirongolddev/weightlog/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the weight log as a spreadsheet or CSV",
	Example: `  weightlog export                     # writes gewicht_log.xlsx
  weightlog export --format csv        # CSV to stdout
  weightlog export -o ~/weights.xlsx`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "xlsx", "Output format: xlsx or csv")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Output file (xlsx default "+export.XLSXFilename+", csv default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	l := rt.store.Load()
	out := cmd.OutOrStdout()

	switch flagExportFormat {
	case "xlsx":
		path := flagExportOutput
		if path == "" {
			path = export.XLSXFilename
		}
		if err := writeFile(path, func(w io.Writer) error { return export.WriteXLSX(w, l) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "  Exported %d entries to %s\n", l.Len(), path)
	case "csv":
		if flagExportOutput == "" {
			return store.WriteCSV(out, l)
		}
		if err := writeFile(flagExportOutput, func(w io.Writer) error { return store.WriteCSV(w, l) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "  Exported %d entries to %s\n", l.Len(), flagExportOutput)
	default:
		return fmt.Errorf("unknown export format %q (want xlsx or csv)", flagExportFormat)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the user
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
