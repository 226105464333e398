package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchType  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Spotify catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient(cmd.Context())
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		result, err := client.Search(cmd.Context(), query, searchType, searchLimit)
		if err != nil {
			return friendlyTransportError(err)
		}
		switch {
		case len(result.Tracks) > 0:
			for i, t := range result.Tracks {
				fmt.Printf("%2d. %s by %s (%s)\n", i+1, t.Name, strings.Join(t.Artists, ", "), t.AlbumName)
			}
		case len(result.Artists) > 0:
			for i, a := range result.Artists {
				fmt.Printf("%2d. %s (%d followers)\n", i+1, a.Name, a.Followers)
			}
		case len(result.Albums) > 0:
			for i, al := range result.Albums {
				if al.Year != "" {
					fmt.Printf("%2d. %s by %s (%s)\n", i+1, al.Name, al.Artist, al.Year)
				} else {
					fmt.Printf("%2d. %s by %s\n", i+1, al.Name, al.Artist)
				}
			}
		default:
			fmt.Printf("No results for %q.\n", query)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "track", "entity to search: track, artist or album")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
