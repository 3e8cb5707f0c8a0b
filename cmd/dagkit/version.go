package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagkit/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dagkit %s\n", version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
