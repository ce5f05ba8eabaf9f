package main

import (
	"os"

	"github.com/mikey/inbox-clusterer/internal/di"
	"github.com/spf13/cobra"
)

func main() {
	flags := &di.CLIFlags{}

	rootCmd := &cobra.Command{
		Use:          "inbox-cluster",
		Short:        "Cluster and summarize recent emails from the command line",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	rootCmd.AddCommand(newRunCmd(flags), newUserCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
