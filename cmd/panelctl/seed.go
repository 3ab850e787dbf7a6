package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"polopay_backend/internals/configs"
	database "polopay_backend/internals/databases"
	authService "polopay_backend/internals/features/users/auth/service"
	"polopay_backend/internals/seeds"
)

func seedUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "seed-users <file.json>",
		Short:   "Create panel logins listed in a JSON file, skipping existing emails",
		Example: `  panelctl seed-users deploy/users.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database.ConnectDB()
			svc := authService.NewAuthService(database.DB, nil, configs.SessionSecret, configs.SessionTTL)
			res, err := seeds.SeedUsersFromJSON(context.Background(), database.DB, svc, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d skipped=%d failed=%d\n", res.Created, res.Skipped, res.Failed)
			return nil
		},
	}
}
