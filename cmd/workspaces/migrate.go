package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aloks98/workspaces"
)

func newMigrateCmd(load func() (*workspaces.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			cfg.Store.AutoMigrate = false

			app, err := workspaces.NewWithConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.Store.Kind)
			return nil
		},
	}
}
