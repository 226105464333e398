package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SearchHandler queries the remote catalog for tracks, artists or
// albums.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "Missing q parameter", "")
		return
	}
	entity := r.URL.Query().Get("type")
	switch entity {
	case "", "track", "artist", "album":
	default:
		respondError(w, http.StatusBadRequest, "type must be track, artist or album", "")
		return
	}
	limit := queryInt(r, "limit", "20")
	result, err := client.Search(r.Context(), q, entity, limit)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SuggestionsHandler serves a short list of track matches for
// type-ahead completion.
func (h *APIHandler) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "Missing q parameter", "")
		return
	}
	tracks, err := client.SearchTracks(r.Context(), q, 5)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": tracks})
}

// RemoteTrackHandler serves one remote track's details.
func (h *APIHandler) RemoteTrackHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	track, err := client.Track(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// ArtistHandler serves one artist's profile.
func (h *APIHandler) ArtistHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	artist, err := client.Artist(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, artist)
}

// ArtistTopTracksHandler serves an artist's most played tracks.
func (h *APIHandler) ArtistTopTracksHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	tracks, err := client.ArtistTopTracks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": tracks})
}
