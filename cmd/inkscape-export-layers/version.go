package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of inkscape-export-layers",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inkscape-export-layers %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
