package main

import (
	"fmt"

	"github.com/spf13/cobra"

	database "polopay_backend/internals/databases"
)

func migrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply the schema for users, sessions, installment plans, discounts,
splits, scheduled payments, audit events and the webhook log.

Examples:
  panelctl migrate
  panelctl migrate --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				for _, m := range database.Models() {
					fmt.Fprintf(cmd.OutOrStdout(), "%T\n", m)
				}
				return nil
			}
			database.ConnectDB()
			if err := database.Migrate(database.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the models without touching the database")
	return cmd
}
