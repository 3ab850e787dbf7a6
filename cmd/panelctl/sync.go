package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"polopay_backend/internals/configs"
	database "polopay_backend/internals/databases"
	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/repository"
	installmentService "polopay_backend/internals/features/billing/installments/service"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [installment-id...]",
		Short: "Pull scheduled payments of plans from the gateway",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := configs.LoadBillingPolicy()
			if err != nil {
				return err
			}
			database.ConnectDB()
			gw := gateway.NewRESTClient(gateway.Config{
				BaseURL: configs.GatewayBaseURL,
				APIKey:  configs.GatewayAPIKey,
				Sandbox: configs.GatewaySandbox,
				Timeout: configs.GatewayTimeout,
			})
			svc := installmentService.NewInstallmentService(
				repository.NewInstallmentRepository(database.DB), gw, policy, configs.Location())
			actor := installmentService.ActorContext{Master: true, Label: "panelctl"}

			var failed int
			for _, id := range args {
				n, err := svc.SyncInstallmentPayments(context.Background(), id, actor)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d payments synced\n", id, n)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d plans failed", failed, len(args))
			}
			return nil
		},
	}
}
