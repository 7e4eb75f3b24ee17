package main

import (
	"github.com/spf13/cobra"
)

var discoverFlags struct {
	verticals []string
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery pass over the configured feeds",
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverFlags.verticals, "vertical", nil,
		"limit discovery to these verticals (default: all)")
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	return application.RunDiscovery(cmd.Context(), discoverFlags.verticals)
}
