package main

import (
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending proposals over an interactive prompt",
	RunE:  runReview,
}

func runReview(cmd *cobra.Command, _ []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	return application.RunReview(cmd.Context())
}
