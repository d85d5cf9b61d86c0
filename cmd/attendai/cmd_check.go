package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCmd runs the startup connectivity probe
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the database connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Sessions.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("session store: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}
