package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtrella/outlay/internal/service"
	"github.com/mtrella/outlay/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses to a Google spreadsheet",
		RunE:  runExport,
	}

	now := time.Now()
	cmd.Flags().Int("year", now.Year(), "year to export")
	cmd.Flags().Int("month", 0, "month to export (0 = whole year)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	if month < 0 || month > 12 {
		return fmt.Errorf("month must be 1-12 (or 0 for the whole year)")
	}

	since, until := exportRange(year, month)

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{
		Since: &since,
		Until: &until,
	})
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}
	if len(expenses) == 0 {
		cmd.Println("no expenses in the selected period")
		return nil
	}

	config := sheets.DefaultConfig()
	config.LoadFromEnv()
	exporter, err := sheets.NewExporter(ctx, config)
	if err != nil {
		return err
	}

	if err := exporter.Export(ctx, expenses); err != nil {
		return err
	}

	cmd.Printf("exported %d expenses\n", len(expenses))
	return nil
}

// exportRange returns the [since, until) window for a year or one of its
// months.
func exportRange(year, month int) (time.Time, time.Time) {
	if month == 0 {
		since := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		return since, since.AddDate(1, 0, 0)
	}
	since := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return since, since.AddDate(0, 1, 0)
}
