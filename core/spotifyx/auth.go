package spotifyx

import (
	"context"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// requiredScopes covers playback control, the user's library and
// playlists, and recently played history.
var requiredScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Authenticator drives the authorization-code flow with PKCE and turns
// stored tokens back into API clients.
type Authenticator struct {
	auth *spotifyauth.Authenticator
}

func NewAuthenticator(clientID, clientSecret, redirectURL string) *Authenticator {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithRedirectURL(redirectURL),
		spotifyauth.WithScopes(requiredScopes...),
	}
	if clientSecret != "" {
		opts = append(opts, spotifyauth.WithClientSecret(clientSecret))
	}
	return &Authenticator{auth: spotifyauth.New(opts...)}
}

// NewVerifier generates a fresh PKCE code verifier. The caller keeps it
// alongside the state until the callback arrives.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthURL builds the consent URL for the given state and verifier.
func (a *Authenticator) AuthURL(state, verifier string) string {
	return a.auth.AuthURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange completes the flow from the callback request, checking state
// and redeeming the code with the matching verifier.
func (a *Authenticator) Exchange(ctx context.Context, state, verifier string, r *http.Request) (*oauth2.Token, error) {
	tok, err := a.auth.Token(ctx, state, r, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, classifyRead(err)
	}
	return tok, nil
}

// ClientFor wraps a stored token in a gateway client. The underlying
// transport refreshes the token transparently when it expires.
func (a *Authenticator) ClientFor(ctx context.Context, tok *oauth2.Token) *Client {
	httpClient := a.auth.Client(ctx, tok)
	return NewClient(spotify.New(httpClient))
}

// Refresh forces a token refresh and returns the renewed token so the
// caller can persist it.
func (a *Authenticator) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	fresh, err := a.auth.RefreshToken(ctx, tok)
	if err != nil {
		return nil, classifyRead(err)
	}
	return fresh, nil
}
