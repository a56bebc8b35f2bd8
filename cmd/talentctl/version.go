package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"unitalent/talent-center/internal/handlers"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, handlers.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
