package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/uranai"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of uranai",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "uranai version %s\n", strings.TrimSpace(uranai.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
