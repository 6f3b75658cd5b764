package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/weightlog/internal/store"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the weight log for unreadable rows",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	insp, ok := rt.store.(store.Inspector)
	if !ok {
		return errors.New("this storage backend cannot be inspected")
	}
	h, err := insp.Inspect()
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", rt.store.Path(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  Store: %s\n", h.Path)
	if !h.Exists {
		fmt.Fprintln(out, "  Status: no log yet (nothing logged)")
		return nil
	}
	fmt.Fprintf(out, "  Rows: %d  Valid: %d  Skipped: %d\n", h.Rows, h.Valid, len(h.Warnings))

	if len(h.Warnings) == 0 {
		fmt.Fprintln(out, "  OK")
		return nil
	}
	fmt.Fprintln(out)
	for _, w := range h.Warnings {
		fmt.Fprintf(out, "  line %d: %s (%q)\n", w.Line, w.Error, w.Content)
	}
	return fmt.Errorf("%d unreadable rows in %s", len(h.Warnings), h.Path)
}
