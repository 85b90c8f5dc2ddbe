package main

import (
	"github.com/spf13/cobra"

	"github.com/aloks98/workspaces"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "workspaces",
		Short: "GraphQL API for shared task workspaces",
		Long: `workspaces serves a GraphQL API where users sign up, log in with
bearer tokens, and share workspaces of TODO, DONE and FAIL items.

Examples:
  # Serve on :4000 with the in-memory store
  SECRET=change-me workspaces serve

  # Serve from PostgreSQL through Gin, creating the tables first
  WORKSPACES_STORE=postgres WORKSPACES_DSN=postgres://localhost/ws workspaces serve --router gin --migrate

  # Write schema.graphql and schema.json for client tooling
  workspaces schema --out ./api

  # Generate a signing secret
  export SECRET=$(workspaces secret)`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	load := func() (*workspaces.Config, error) {
		return loadConfig(configPath)
	}
	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSchemaCmd(),
		newSecretCmd(),
	)
	return root
}

// loadConfig reads path over the defaults, when given, and overlays the environment.
func loadConfig(path string) (*workspaces.Config, error) {
	cfg := workspaces.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = workspaces.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
