package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aloks98/workspaces/graph"
)

func newSchemaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write schema.graphql and the introspection result schema.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSchema(out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "Output directory")
	return cmd
}

func writeSchema(dir string) error {
	schema, err := graph.NewSchema(graph.Config{})
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	introspection, err := schema.ToJSON()
	if err != nil {
		return fmt.Errorf("introspect schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte(graph.SDL), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "schema.json"), introspection, 0o644)
}
