package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"soundscore/server"
)

var rootCmd = &cobra.Command{
	Use:   "soundscore",
	Short: "SoundScore is a social album rating service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting SoundScore server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
