package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

var (
	likedLimit    int
	likedOffset   int
	likedPreviews bool
)

var likedCmd = &cobra.Command{
	Use:   "liked",
	Short: "List your saved tracks",
	Long: `List a page of your saved tracks. With --previews the whole library
is walked page by page and only tracks carrying a preview clip are
printed, as they arrive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}

		if likedPreviews {
			count := 0
			_, err := spotifyx.CollectPreviews(cmd.Context(), client, func(batch []model.RemoteTrack) {
				for _, t := range batch {
					count++
					fmt.Printf("%4d. %s by %s\n", count, t.Name, strings.Join(t.Artists, ", "))
				}
			})
			if err != nil {
				if count > 0 {
					fmt.Printf("Stopped early after %d tracks.\n", count)
				}
				return friendlyTransportError(err)
			}
			if count == 0 {
				fmt.Println("No saved tracks with previews.")
			}
			return nil
		}

		items, total, err := client.LikedTracks(cmd.Context(), likedLimit, likedOffset)
		if err != nil {
			return friendlyTransportError(err)
		}
		if len(items) == 0 {
			fmt.Println("No saved tracks.")
			return nil
		}
		for i, t := range items {
			fmt.Printf("%4d. %s by %s (%s)\n", likedOffset+i+1, t.Name, strings.Join(t.Artists, ", "), formatMS(t.DurationMS))
		}
		fmt.Printf("Showing %d-%d of %d.\n", likedOffset+1, likedOffset+len(items), total)
		return nil
	},
}

func init() {
	likedCmd.Flags().IntVar(&likedLimit, "limit", 50, "tracks per page")
	likedCmd.Flags().IntVar(&likedOffset, "offset", 0, "page start index")
	likedCmd.Flags().BoolVar(&likedPreviews, "previews", false, "walk the whole library and list preview-carrying tracks")
	rootCmd.AddCommand(likedCmd)
}
