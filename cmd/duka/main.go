// Command duka runs the storefront and its maintenance tasks.
//
//	duka serve
//	duka route:list
//	duka orders:list
//	duka products:list --category "Home & Living"
//	duka phone:check "+254 712 345 678"
//	duka migrate
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register the order log migrations.
	_ "github.com/shashiranjanraj/duka/database/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "duka",
		Short:         "duka storefront",
		Long:          "duka serves the storefront API and manages its catalog, carts and order log.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Server
	root.AddCommand(serveCmd())
	root.AddCommand(routeListCmd())

	// Store data
	root.AddCommand(ordersListCmd())
	root.AddCommand(productsListCmd())
	root.AddCommand(phoneCheckCmd())

	// Database
	root.AddCommand(migrateCmd())
	root.AddCommand(migrateRollbackCmd())
	root.AddCommand(migrateStatusCmd())
	return root
}
