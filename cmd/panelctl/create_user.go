package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"polopay_backend/internals/configs"
	"polopay_backend/internals/constants"
	database "polopay_backend/internals/databases"
	authService "polopay_backend/internals/features/users/auth/service"
	helper "polopay_backend/internals/helpers"
)

type createUserOpts struct {
	email    string
	password string
	name     string
	role     string
	tenant   string
}

func (o createUserOpts) validate() (*uuid.UUID, error) {
	if strings.TrimSpace(o.email) == "" || len(o.password) < 6 {
		return nil, fmt.Errorf("--email and a --password of at least 6 characters are required")
	}
	if !constants.IsValidRole(o.role) {
		return nil, fmt.Errorf("unknown role %q (want one of %s)", o.role, strings.Join(constants.AllRoles, ", "))
	}
	if o.tenant == "" {
		if o.role != constants.RoleMaster {
			return nil, fmt.Errorf("--tenant is required for role %s", o.role)
		}
		return nil, nil
	}
	id, err := uuid.Parse(o.tenant)
	if err != nil {
		return nil, fmt.Errorf("invalid --tenant: %w", err)
	}
	return &id, nil
}

func createUserCmd() *cobra.Command {
	var o createUserOpts
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a panel login",
		Example: `  panelctl create-user --email root@example.com --password 's3cret!' --role master
  panelctl create-user --email ops@example.com --password 's3cret!' --role operator --tenant 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := o.validate()
			if err != nil {
				return err
			}
			database.ConnectDB()
			svc := authService.NewAuthService(database.DB, nil, configs.SessionSecret, configs.SessionTTL)
			u, err := svc.CreateUser(context.Background(), o.email, o.password, o.name, o.role, tenantID)
			if err != nil {
				if helper.IsUniqueViolation(err) {
					return fmt.Errorf("a user with email %s already exists", o.email)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.email, "email", "", "login email")
	cmd.Flags().StringVar(&o.password, "password", "", "initial password")
	cmd.Flags().StringVar(&o.name, "name", "", "display name")
	cmd.Flags().StringVar(&o.role, "role", constants.RoleOperator, "master, admin, operator or viewer")
	cmd.Flags().StringVar(&o.tenant, "tenant", "", "tenant id (not needed for master)")
	return cmd
}
