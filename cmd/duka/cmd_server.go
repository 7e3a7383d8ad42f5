package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/internal/kernel"
	"github.com/shashiranjanraj/duka/internal/server"
	"github.com/shashiranjanraj/duka/pkg/logger"
)

// duka serve
func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run", "start"},
		Short:   "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if port != "" {
				config.Set("APP_PORT", port)
			}

			app, err := kernel.Boot(ctx)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
				defer cancel()
				if err := app.Close(closeCtx); err != nil {
					logger.Error("shutdown", "error", err)
				}
			}()

			return server.Run(ctx, ":"+config.AppPort(), app.Handler(ctx))
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides APP_PORT)")
	return cmd
}

// duka route:list
func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "route:list",
		Aliases: []string{"routes"},
		Short:   "List all registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := kernel.NewRouter(kernel.Deps{}).Routes()
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No routes registered.")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Method", "Path", "Name"})
			for _, ri := range infos {
				table.Append([]string{ri.Method, ri.Path, ri.Name})
			}
			table.Render()
			return nil
		},
	}
}
