package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram review bot",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.RunBot(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
