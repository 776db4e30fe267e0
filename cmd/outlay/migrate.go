package main

import (
	"github.com/spf13/cobra"

	"github.com/mtrella/outlay/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cmd.Printf("database schema at version %d\n", storage.ExpectedSchemaVersion)
			return nil
		},
	}
}
