// Command workspaces serves the workspaces GraphQL API.
//
// Configuration is read from an optional YAML file, then from the
// environment (SECRET, PORT and the WORKSPACES_* variables), then from
// command line flags.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
