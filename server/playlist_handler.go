package server

import (
	"encoding/json"
	"net/http"

	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/gorilla/mux"
)

// PlaylistsHandler lists the user's playlists.
func (h *APIHandler) PlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	limit := queryInt(r, "limit", "50")
	playlists, err := client.Playlists(r.Context(), limit)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": playlists})
}

// PlaylistTracksHandler serves one page of a playlist's tracks.
func (h *APIHandler) PlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	limit := queryInt(r, "limit", "100")
	offset := queryInt(r, "offset", "0")
	tracks, total, err := client.PlaylistTracks(r.Context(), id, limit, offset)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  tracks,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// CreatePlaylistHandler makes a new playlist for the current user.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Missing name", "")
		return
	}
	playlist, err := client.CreatePlaylist(r.Context(), req.Name, req.Description, req.Public)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, playlist)
}

// RenamePlaylistHandler changes a playlist's name.
func (h *APIHandler) RenamePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Missing name", "")
		return
	}
	if err := client.RenamePlaylist(r.Context(), mux.Vars(r)["id"], req.Name); err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"renamed": true})
}

// PlaylistAddTracksHandler appends tracks to a playlist.
func (h *APIHandler) PlaylistAddTracksHandler(w http.ResponseWriter, r *http.Request) {
	h.playlistTracksCommand(w, r, func(client *spotifyx.Client, id string, uris []string) error {
		return client.AddPlaylistTracks(r.Context(), id, uris)
	})
}

// PlaylistRemoveTracksHandler removes tracks from a playlist.
func (h *APIHandler) PlaylistRemoveTracksHandler(w http.ResponseWriter, r *http.Request) {
	h.playlistTracksCommand(w, r, func(client *spotifyx.Client, id string, uris []string) error {
		return client.RemovePlaylistTracks(r.Context(), id, uris)
	})
}

func (h *APIHandler) playlistTracksCommand(w http.ResponseWriter, r *http.Request, op func(*spotifyx.Client, string, []string) error) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	var req struct {
		URIs []string `json:"uris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URIs) == 0 {
		respondError(w, http.StatusBadRequest, "Missing uris", "")
		return
	}
	if err := op(client, mux.Vars(r)["id"], req.URIs); err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"updated": len(req.URIs)})
}

// PlaylistPlayHandler starts playback of a playlist on the active
// device.
func (h *APIHandler) PlaylistPlayHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	if err := client.PlayContext(r.Context(), "spotify:playlist:"+mux.Vars(r)["id"], nil); err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"playing": true})
}

// FeaturedPlaylistsHandler serves the service's editorial selection.
func (h *APIHandler) FeaturedPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	limit := queryInt(r, "limit", "20")
	message, playlists, err := client.FeaturedPlaylists(r.Context(), limit)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"items":   playlists,
	})
}
