package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ShHaWkK/SpootifyCLI/cache"
	"github.com/ShHaWkK/SpootifyCLI/config"
	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/library"
	"github.com/ShHaWkK/SpootifyCLI/logger"
)

// Start builds all components, runs the HTTP server and blocks until a
// shutdown signal arrives.
func Start(cfg *config.Config) error {
	catalog, err := library.NewCatalog(cfg.MusicDir)
	if err != nil {
		return err
	}
	if err := catalog.Scan(); err != nil {
		logger.Warn("initial library scan failed", logger.ErrorField(err))
	}

	store := cache.New(cfg)
	defer store.Close()

	authenticator := spotifyx.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURL)
	apiHandler := NewAPIHandler(catalog, store, authenticator, cfg)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      Router(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses have no fixed deadline
		IdleTimeout:  120 * time.Second,
	}

	// Watch the music directory so files dropped in by hand show up
	// without a manual refresh.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go func() {
		if err := catalog.Watch(watchCtx); err != nil {
			logger.Warn("library watcher stopped", logger.ErrorField(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// Router assembles the HTTP surface.
func Router(h *APIHandler) http.Handler {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(metricsMiddleware)

	// Authentication flow.
	router.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodGet)
	router.HandleFunc("/auth/callback", h.CallbackHandler).Methods(http.MethodGet)
	router.HandleFunc("/auth/logout", h.LogoutHandler).Methods(http.MethodGet)
	router.HandleFunc("/auth/session", h.SessionHandler).Methods(http.MethodGet)

	// Local library.
	router.HandleFunc("/api/local/library", h.LibraryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/local/search", h.LocalSearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/local/upload", h.UploadHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/local/refresh", h.RefreshHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/local/tracks/{id}", h.TrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/local/tracks/{id}", h.DeleteTrackHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/local/stream/{id}", h.StreamHandler).Methods(http.MethodGet, http.MethodHead)

	// Remote player control.
	router.HandleFunc("/api/player/status", h.AuthMiddleware(h.StatusHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/play", h.AuthMiddleware(h.PlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/pause", h.AuthMiddleware(h.PauseHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/next", h.AuthMiddleware(h.NextHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/previous", h.AuthMiddleware(h.PreviousHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/seek", h.AuthMiddleware(h.SeekHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/volume", h.AuthMiddleware(h.VolumeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/shuffle", h.AuthMiddleware(h.ShuffleHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/repeat", h.AuthMiddleware(h.RepeatHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/transfer", h.AuthMiddleware(h.TransferHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/queue", h.AuthMiddleware(h.QueueHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/devices", h.AuthMiddleware(h.DevicesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/liked-tracks", h.AuthMiddleware(h.LikedTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/liked-tracks/play", h.AuthMiddleware(h.LikedPlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/liked-tracks/previews", h.AuthMiddleware(h.PreviewsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/liked-tracks/alternatives", h.AuthMiddleware(h.AlternativesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/liked-tracks/recommendations", h.AuthMiddleware(h.RecommendationsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/recently-played", h.AuthMiddleware(h.RecentlyPlayedHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/lyrics", h.AuthMiddleware(h.LyricsHandler)).Methods(http.MethodGet)

	// Remote catalog.
	router.HandleFunc("/api/search", h.AuthMiddleware(h.SearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/search/suggestions", h.AuthMiddleware(h.SuggestionsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.RemoteTrackHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{id}", h.AuthMiddleware(h.ArtistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{id}/top-tracks", h.AuthMiddleware(h.ArtistTopTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.PlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	// The fixed featured path goes in before the {id} routes so mux
	// does not capture it as a playlist id.
	router.HandleFunc("/api/playlists/featured", h.AuthMiddleware(h.FeaturedPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.PlaylistTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.RenamePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}/play", h.AuthMiddleware(h.PlaylistPlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks", h.AuthMiddleware(h.PlaylistAddTracksHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks", h.AuthMiddleware(h.PlaylistRemoveTracksHandler)).Methods(http.MethodDelete)

	// Playback session socket.
	router.HandleFunc("/ws/player", h.PlayerSocketHandler)

	// Operations.
	router.HandleFunc("/healthz", h.HealthzHandler).Methods(http.MethodGet)
	router.Handle("/metrics", MetricsHandler()).Methods(http.MethodGet)

	// Dashboard assets, when present.
	if info, err := os.Stat("web"); err == nil && info.IsDir() {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir("web")))
	}

	return router
}
