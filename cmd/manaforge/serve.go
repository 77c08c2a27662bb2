package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/manaforge/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return a.Run()
	},
}
