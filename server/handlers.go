package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ShHaWkK/SpootifyCLI/cache"
	"github.com/ShHaWkK/SpootifyCLI/config"
	"github.com/ShHaWkK/SpootifyCLI/core/lyrics"
	"github.com/ShHaWkK/SpootifyCLI/core/player"
	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/library"
	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

// APIHandler carries the shared dependencies for all HTTP handlers.
type APIHandler struct {
	catalog  *library.Catalog
	store    cache.Store
	auth     *spotifyx.Authenticator
	resolver *player.Resolver
	lyrics   *lyrics.Client
	cfg      *config.Config
}

// NewAPIHandler wires the handler set. The resolver is shared across
// all requests so duplicate play requests coalesce globally.
func NewAPIHandler(catalog *library.Catalog, store cache.Store, auth *spotifyx.Authenticator, cfg *config.Config) *APIHandler {
	return &APIHandler{
		catalog:  catalog,
		store:    store,
		auth:     auth,
		resolver: player.NewResolver(contextGateway{}, catalog),
		lyrics:   lyrics.New(),
		cfg:      cfg,
	}
}

type contextKey string

const clientContextKey contextKey = "spotifyClient"

// NewContextWithClient attaches an authenticated gateway client to ctx.
func NewContextWithClient(ctx context.Context, client *spotifyx.Client) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}

// ClientFromContext extracts the gateway client installed by the auth
// middleware.
func ClientFromContext(ctx context.Context) (*spotifyx.Client, error) {
	client, ok := ctx.Value(clientContextKey).(*spotifyx.Client)
	if !ok || client == nil {
		return nil, spotifyx.ErrUnauthorized
	}
	return client, nil
}

// contextGateway adapts the per-request client in the context to the
// resolver's gateway interface, so one resolver (and one idempotence
// guard) serves every session.
type contextGateway struct{}

func (contextGateway) HasActiveDevice(ctx context.Context) (bool, error) {
	client, err := ClientFromContext(ctx)
	if err != nil {
		return false, err
	}
	return client.HasActiveDevice(ctx)
}

func (contextGateway) Play(ctx context.Context, uris []string, offset *int) error {
	client, err := ClientFromContext(ctx)
	if err != nil {
		return err
	}
	return client.Play(ctx, uris, offset)
}

func (contextGateway) SearchTracks(ctx context.Context, q string, limit int) ([]model.RemoteTrack, error) {
	client, err := ClientFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return client.SearchTracks(ctx, q, limit)
}

func (contextGateway) Recommendations(ctx context.Context, limit int) ([]model.RemoteTrack, error) {
	client, err := ClientFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return client.Recommendations(ctx, limit)
}

// errorBody is the JSON error envelope. Code is set only for errors
// clients branch on programmatically.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, errorBody{Error: message, Code: code})
}

// respondGatewayError maps classified gateway errors onto the HTTP
// statuses and codes clients expect.
func respondGatewayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, spotifyx.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "Authentication expired. Please log in again.", "UNAUTHORIZED")
	case errors.Is(err, spotifyx.ErrNoActiveDevice):
		respondError(w, http.StatusNotFound, "No active device found. Open the player on one of your devices.", "NO_ACTIVE_DEVICE")
	case errors.Is(err, spotifyx.ErrForbidden):
		respondError(w, http.StatusForbidden, "The player refused this action for your account.", "ACCESS_DENIED")
	default:
		logger.Error("gateway request failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Remote service request failed", "")
	}
}
