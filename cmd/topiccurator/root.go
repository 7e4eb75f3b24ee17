package main

import (
	"github.com/spf13/cobra"

	"TopicCurator/internal/app"
	"TopicCurator/internal/config"
	"TopicCurator/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "topiccurator",
	Short:         "Feed-driven topic taxonomy and belief curation agent",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(discoverCmd, reviewCmd, botCmd, serveCmd)
}

func newApp() (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger)
}
