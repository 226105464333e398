package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ShHaWkK/SpootifyCLI/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the web dashboard and API server",
	Long: `Starts the HTTP server: the playback API, the local music library with
byte-range streaming, the websocket playback session, and the dashboard
assets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
