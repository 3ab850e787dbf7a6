package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"polopay_backend/internals/configs"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "panelctl",
		Short:   "Operations for the installment billing panel",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configs.LoadEnv()
			configs.InitLogger()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(seedUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
