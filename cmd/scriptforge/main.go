package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/scriptforge/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var root = &cobra.Command{
		Use:           "scriptforge",
		Short:         "Screenplay scene and outline generation service",
		Version:       version.Version + " (" + version.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: false,
		// Running without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd(), generateCmd(), parseCmd())
	return root
}
