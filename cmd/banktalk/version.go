package main

import (
	"fmt"
	"strings"

	"github.com/banktalk/banktalk"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of banktalk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "banktalk version %s\n", strings.TrimSpace(banktalk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
