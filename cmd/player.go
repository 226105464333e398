package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Resume playback, or search and play the best match",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) == 0 {
			if err := client.Resume(cmd.Context()); err != nil {
				return friendlyTransportError(err)
			}
			fmt.Println("Playback resumed.")
			return nil
		}
		query := strings.Join(args, " ")
		tracks, err := client.SearchTracks(cmd.Context(), query, 1)
		if err != nil {
			return friendlyTransportError(err)
		}
		if len(tracks) == 0 {
			return fmt.Errorf("no tracks found for %q", query)
		}
		track := tracks[0]
		if err := client.Play(cmd.Context(), []string{track.URI}, nil); err != nil {
			return friendlyTransportError(err)
		}
		fmt.Printf("Playing %s by %s.\n", track.Name, strings.Join(track.Artists, ", "))
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Pause(cmd.Context()); err != nil {
			return friendlyTransportError(err)
		}
		fmt.Println("Playback paused.")
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next track",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Next(cmd.Context()); err != nil {
			return friendlyTransportError(err)
		}
		fmt.Println("Skipped forward.")
		return nil
	},
}

var previousCmd = &cobra.Command{
	Use:   "previous",
	Short: "Go back to the previous track",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Previous(cmd.Context()); err != nil {
			return friendlyTransportError(err)
		}
		fmt.Println("Skipped back.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is currently playing",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		status, err := client.Status(cmd.Context())
		if err != nil {
			return friendlyTransportError(err)
		}
		if status.Track == nil {
			if status.Message != "" {
				fmt.Println(status.Message)
			} else {
				fmt.Println("Nothing is playing.")
			}
			return nil
		}
		verb := "Paused"
		if status.IsPlaying {
			verb = "Playing"
		}
		fmt.Printf("%s: %s by %s\n", verb, status.Track.Name, strings.Join(status.Track.Artists, ", "))
		fmt.Printf("  %s / %s", formatMS(status.ProgressMS), formatMS(status.DurationMS))
		if status.Device != nil {
			fmt.Printf("  on %s (volume %d%%)", status.Device.Name, status.Volume)
		}
		fmt.Println()
		fmt.Printf("  shuffle %s, repeat %s\n", onOff(status.ShuffleState), status.RepeatState)
		return nil
	},
}

// friendlyTransportError rewrites classified gateway errors into the
// short guidance the terminal user needs.
func friendlyTransportError(err error) error {
	switch {
	case errors.Is(err, spotifyx.ErrUnauthorized):
		return fmt.Errorf("authentication expired. Run 'spootify auth' again")
	case errors.Is(err, spotifyx.ErrNoActiveDevice):
		return fmt.Errorf("no active device. Open Spotify on one of your devices and try again")
	case errors.Is(err, spotifyx.ErrForbidden):
		return fmt.Errorf("Spotify refused the command for this account")
	default:
		return err
	}
}

func formatMS(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	rootCmd.AddCommand(playCmd, pauseCmd, nextCmd, previousCmd, statusCmd)
}
