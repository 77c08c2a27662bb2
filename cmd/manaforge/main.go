// Package main provides the manaforge server and its maintenance CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/manaforge/internal/config"
)

var (
	// envFile is set by the --env-file flag.
	envFile string

	// cfg is loaded once in PersistentPreRunE.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "manaforge",
	Short: "Manaforge builds and serves trading card decks",
	Long: `Manaforge keeps a collection of card decks, serves them over HTTP
with live updates, and talks to a remote card and favorites service.

Configuration is read from MANAFORGE_* environment variables, optionally
seeded from a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decksCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// Skip config for version command
	if cmd.Name() == "version" {
		return nil
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	return nil
}
