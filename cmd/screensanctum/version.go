package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screensanctum %s\n", version.Version)
		fmt.Printf("  Commit: %s\n", version.Commit)
		fmt.Printf("  Date:   %s\n", version.Date)
	},
}
