package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShHaWkK/SpootifyCLI/config"
	"github.com/ShHaWkK/SpootifyCLI/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "spootify",
	Short: "Spootify controls Spotify playback and serves a local music dashboard.",
	Long: `Spootify is a companion for Spotify: control playback on your devices
from the terminal, browse your library and playlists, and run a web
dashboard that can fall back to local audio files when no device is
available.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		})
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
