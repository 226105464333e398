package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
)

const cliCallbackAddr = "localhost:8721"

func cliRedirectURL() string {
	return "http://" + cliCallbackAddr + "/callback"
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in to Spotify",
	Long: `Opens the Spotify consent page and waits for the redirect on a local
port. The resulting tokens are stored under ~/.spootify/ for the other
commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.SpotifyClientID == "" {
			return fmt.Errorf("SPOTIFY_CLIENT_ID is not set")
		}
		store, err := openCredStore()
		if err != nil {
			return err
		}

		authenticator := spotifyx.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cliRedirectURL())
		state := uuid.NewString()
		verifier := spotifyx.NewVerifier()

		tokens := make(chan *oauth2.Token, 1)
		errs := make(chan error, 1)
		mux := http.NewServeMux()
		mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
			tok, err := authenticator.Exchange(r.Context(), state, verifier, r)
			if err != nil {
				http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
				errs <- err
				return
			}
			fmt.Fprintln(w, "Logged in. You can close this window.")
			tokens <- tok
		})
		server := &http.Server{Addr: cliCallbackAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errs <- err
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()

		fmt.Println("Open this URL in your browser to log in:")
		fmt.Println()
		fmt.Println("  " + authenticator.AuthURL(state, verifier))
		fmt.Println()
		fmt.Println("Waiting for the redirect...")

		select {
		case tok := <-tokens:
			if err := store.saveToken(tok); err != nil {
				return err
			}
			client := authenticator.ClientFor(cmd.Context(), tok)
			if name, err := client.CurrentUserName(cmd.Context()); err == nil {
				fmt.Printf("Logged in as %s.\n", name)
			} else {
				fmt.Println("Logged in.")
			}
			return nil
		case err := <-errs:
			return err
		case <-time.After(5 * time.Minute):
			return fmt.Errorf("timed out waiting for the login redirect")
		}
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
