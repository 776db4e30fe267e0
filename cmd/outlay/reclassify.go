package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mtrella/outlay/internal/model"
	"github.com/mtrella/outlay/internal/service"
)

func reclassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Re-run classification over persisted expenses",
		Long: `Classify each stored description again with the current taxonomy and
model. Where the suggested category differs, a replacement row and an audit
note are written; the original row is kept. Use --dry-run to preview.`,
		RunE: runReclassify,
	}

	cmd.Flags().Bool("dry-run", false, "report would-be changes without writing")
	cmd.Flags().Int("limit", 0, "maximum number of expenses to examine (0 = all)")
	cmd.Flags().String("category", "", "only expenses currently in this category")

	return cmd
}

func runReclassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	limit, _ := cmd.Flags().GetInt("limit")
	category, _ := cmd.Flags().GetString("category")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gateway, err := newLLMClient()
	if err != nil {
		return err
	}
	defer gateway.Close()

	classifier, err := newClassifier(ctx, store, gateway)
	if err != nil {
		return err
	}

	expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{
		Limit:    limit,
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}
	if len(expenses) == 0 {
		cmd.Println("no expenses to reclassify")
		return nil
	}

	bar := progressbar.Default(int64(len(expenses)), "reclassifying")

	var changed, failed int
	for _, expense := range expenses {
		_ = bar.Add(1)

		candidate, err := classifier.Classify(ctx, expense.Description)
		if err != nil {
			failed++
			cmd.PrintErrf("expense %d: %v\n", expense.ID, err)
			continue
		}

		if candidate.Category == expense.Category {
			continue
		}
		changed++

		if dryRun {
			cmd.Printf("expense %d: %s -> %s (confidence %.2f)\n",
				expense.ID, expense.Category, candidate.Category, candidate.Confidence)
			continue
		}

		// A batch re-classification is a machine decision; it must not
		// masquerade as a human override in the audit trail.
		note := fmt.Sprintf("reclassified from %q (confidence %.2f)",
			expense.Category, candidate.Confidence)
		if _, err := store.ReplaceExpenseCategory(ctx, expense.ID, candidate.Category,
			model.ProvenanceAutoClassified, candidate.Confidence, note); err != nil {
			failed++
			cmd.PrintErrf("expense %d: %v\n", expense.ID, err)
		}
	}

	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	cmd.Printf("\nexamined %d expenses, %s %d, %d failed\n",
		len(expenses), verb, changed, failed)
	return nil
}
