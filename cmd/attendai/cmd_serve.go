package main

import (
	"github.com/attendai/attendai/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP chat API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	Long: `Probes the attendance store, then serves the chat API until SIGINT or
SIGTERM. The process exits with status 1 when the database is unreachable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		return server.New(app).Run(cmd.Context())
	},
}
