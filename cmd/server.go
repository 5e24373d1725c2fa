package cmd

import (
	"github.com/spf13/cobra"

	"soundscore/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the SoundScore HTTP server",
	Long:  `Start the SoundScore HTTP server, serving the rating, list and friend APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
