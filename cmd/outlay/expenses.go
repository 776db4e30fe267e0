package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mtrella/outlay/internal/service"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Inspect finalized expenses",
	}

	cmd.AddCommand(listExpensesCmd())
	return cmd
}

func listExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")
			category, _ := cmd.Flags().GetString("category")
			sessionID, _ := cmd.Flags().GetString("session")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{
				Limit:     limit,
				Category:  category,
				SessionID: sessionID,
			})
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if len(expenses) == 0 {
				cmd.Println("no expenses found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tPROVENANCE\tCONF\tDESCRIPTION")
			for _, e := range expenses {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f %s\t%s\t%.2f\t%s\n",
					e.ID,
					e.CreatedAt.Format("2006-01-02"),
					e.Category,
					e.Amount,
					e.CurrencyCode,
					e.Provenance,
					e.Confidence,
					e.Description)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of expenses to show")
	cmd.Flags().String("category", "", "only this category")
	cmd.Flags().String("session", "", "only this session id")
	return cmd
}
