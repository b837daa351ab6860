package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/godilite/valuation-server/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the valuation gRPC server",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			return eris.Wrap(err, "initialize application")
		}
		if err := application.Run(cmd.Context()); err != nil {
			return eris.Wrap(err, "application exited")
		}
		return nil
	},
}
