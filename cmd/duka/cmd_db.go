package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/pkg/database"
	"github.com/shashiranjanraj/duka/pkg/migration"
)

// bootDB loads config and opens the SQL order log database.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect()
}

// duka migrate
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the SQL order log tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			defer database.Close()

			ran, err := migration.New(db).Run(cmd.Context())
			for _, name := range ran {
				fmt.Fprintln(cmd.OutOrStdout(), "Migrated:", name)
			}
			if err == nil && len(ran) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
			}
			return err
		},
	}
}

// duka migrate:rollback
func migrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last batch of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			defer database.Close()

			rolled, err := migration.New(db).Rollback(cmd.Context())
			for _, name := range rolled {
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back:", name)
			}
			if err == nil && len(rolled) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back.")
			}
			return err
		},
	}
}

// duka migrate:status
func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			defer database.Close()

			statuses, err := migration.New(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Ran?", "Migration", "Batch"})
			for _, s := range statuses {
				ran, batch := "No", ""
				if s.Ran {
					ran, batch = "Yes", fmt.Sprint(s.Batch)
				}
				table.Append([]string{ran, s.Name, batch})
			}
			table.Render()
			return nil
		},
	}
}
