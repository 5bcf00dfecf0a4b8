package main

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the interactive game master board",
	Long: `Starts a session over the scenario directory and reads commands and player
actions from standard input. Type /help inside the board for the command list.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Bool("player", false, "Player view: hide document sources")
	rootCmd.Flags().Bool("player", false, "Player view: hide document sources")
}
