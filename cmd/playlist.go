package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List your playlists",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		playlists, err := client.Playlists(cmd.Context(), 50)
		if err != nil {
			return friendlyTransportError(err)
		}
		if len(playlists) == 0 {
			fmt.Println("You have no playlists.")
			return nil
		}
		for _, p := range playlists {
			fmt.Printf("%s  %s (%d tracks", p.ID, p.Name, p.TrackCount)
			if p.Owner != "" {
				fmt.Printf(", by %s", p.Owner)
			}
			fmt.Println(")")
		}
		return nil
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist <id>",
	Short: "Show the tracks of a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		tracks, total, err := client.PlaylistTracks(cmd.Context(), args[0], 100, 0)
		if err != nil {
			return friendlyTransportError(err)
		}
		for i, t := range tracks {
			fmt.Printf("%3d. %s by %s\n", i+1, t.Name, strings.Join(t.Artists, ", "))
		}
		if total > len(tracks) {
			fmt.Printf("... and %d more.\n", total-len(tracks))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playlistsCmd, playlistCmd)
}
