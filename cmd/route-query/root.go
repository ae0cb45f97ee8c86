package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "route-query",
	Short: "Inspect a SafeRoute network drop without starting the server",
	Long: `route-query loads a transit network from a CSV directory, a GTFS zip or the
analytical Postgres store, and answers risk-weighted route queries against it.
It also issues admin tokens for the graph reload endpoint.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
