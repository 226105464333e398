package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
)

// credStore reads and writes the CLI's credentials under
// ~/.spootify/config.yaml.
type credStore struct {
	v    *viper.Viper
	path string
}

func openCredStore() (*credStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot locate home directory: %w", err)
	}
	dir := filepath.Join(home, ".spootify")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create config directory: %w", err)
	}
	v := viper.New()
	path := filepath.Join(dir, "config.yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
	}
	return &credStore{v: v, path: path}, nil
}

func (s *credStore) token() (*oauth2.Token, bool) {
	access := s.v.GetString("access_token")
	if access == "" {
		return nil, false
	}
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: s.v.GetString("refresh_token"),
		TokenType:    "Bearer",
		Expiry:       s.v.GetTime("expiry"),
	}, true
}

func (s *credStore) saveToken(tok *oauth2.Token) error {
	s.v.Set("access_token", tok.AccessToken)
	if tok.RefreshToken != "" {
		s.v.Set("refresh_token", tok.RefreshToken)
	}
	s.v.Set("expiry", tok.Expiry.Format(time.RFC3339))
	return s.v.WriteConfigAs(s.path)
}

func (s *credStore) reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// newGatewayClient builds an authenticated client from the stored
// credentials, refreshing the access token first when it has expired.
func newGatewayClient(ctx context.Context) (*spotifyx.Client, error) {
	store, err := openCredStore()
	if err != nil {
		return nil, err
	}
	tok, ok := store.token()
	if !ok {
		return nil, fmt.Errorf("not authenticated. Run 'spootify auth' first")
	}
	authenticator := spotifyx.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cliRedirectURL())
	if !tok.Valid() && tok.RefreshToken != "" {
		fresh, err := authenticator.Refresh(ctx, tok)
		if err != nil {
			return nil, fmt.Errorf("token refresh failed, run 'spootify auth' again: %w", err)
		}
		if err := store.saveToken(fresh); err != nil {
			return nil, err
		}
		tok = fresh
	}
	return authenticator.ClientFor(ctx, tok), nil
}
