package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configReset bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or reset the stored CLI credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCredStore()
		if err != nil {
			return err
		}
		if configReset {
			if err := store.reset(); err != nil {
				return err
			}
			fmt.Println("Stored credentials removed.")
			return nil
		}
		fmt.Println("Config file:", store.path)
		if tok, ok := store.token(); ok {
			fmt.Println("Authenticated: yes")
			fmt.Println("Token expiry: ", tok.Expiry.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Authenticated: no (run 'spootify auth')")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configReset, "reset", false, "delete the stored credentials")
	rootCmd.AddCommand(configCmd)
}
