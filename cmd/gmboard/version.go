package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/gmboard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gmboard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gmboard version %s\n", strings.TrimSpace(gmboard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
