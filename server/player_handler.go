package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ShHaWkK/SpootifyCLI/core/lyrics"
	"github.com/ShHaWkK/SpootifyCLI/core/match"
	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

func queryInt(r *http.Request, name, fallbackRaw string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		raw = fallbackRaw
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		n, _ = strconv.Atoi(fallbackRaw)
	}
	return n
}

// StatusHandler reports the remote player state.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	status, err := client.Status(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

type playRequest struct {
	LocalID    string             `json:"localId,omitempty"`
	Track      *model.RemoteTrack `json:"track,omitempty"`
	URIs       []string           `json:"uris,omitempty"`
	Offset     *int               `json:"offset,omitempty"`
	ContextURI string             `json:"contextUri,omitempty"`
}

// PlayHandler starts playback. A local id or a full remote track runs
// through the fallback resolver; bare URIs or a context URI go straight
// to the active device; an empty body resumes.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	// An empty body means resume; a malformed one is rejected.
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	switch {
	case req.LocalID != "":
		h.resolvePlay(w, r, model.LocalRef(req.LocalID))
	case req.Track != nil:
		h.resolvePlay(w, r, model.RemoteRef(req.Track))
	case req.ContextURI != "":
		if err := client.PlayContext(r.Context(), req.ContextURI, req.Offset); err != nil {
			respondGatewayError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	case len(req.URIs) > 0:
		if err := client.Play(r.Context(), req.URIs, req.Offset); err != nil {
			respondGatewayError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		if err := client.Resume(r.Context()); err != nil {
			respondGatewayError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (h *APIHandler) resolvePlay(w http.ResponseWriter, r *http.Request, ref model.TrackRef) {
	res, err := h.resolver.Resolve(r.Context(), ref)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	resolutionsTotal.WithLabelValues(string(res.Target)).Inc()
	respondJSON(w, http.StatusOK, res)
}

// PauseHandler pauses the remote player.
func (h *APIHandler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.Pause(r.Context())
	})
}

// NextHandler skips forward on the remote player.
func (h *APIHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.Next(r.Context())
	})
}

// PreviousHandler skips backward on the remote player.
func (h *APIHandler) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.Previous(r.Context())
	})
}

// SeekHandler jumps to a position within the current remote track.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PositionMS int `json:"positionMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.Seek(r.Context(), req.PositionMS)
	})
}

// VolumeHandler sets the remote device volume.
func (h *APIHandler) VolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume int `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.SetVolume(r.Context(), req.Volume)
	})
}

// ShuffleHandler toggles remote shuffle.
func (h *APIHandler) ShuffleHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State bool `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.SetShuffle(r.Context(), req.State)
	})
}

// RepeatHandler sets the remote repeat mode.
func (h *APIHandler) RepeatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	mode := model.RepeatMode(req.State)
	if !model.ValidRepeatMode(mode) {
		respondError(w, http.StatusBadRequest, "Repeat state must be off, track or context", "")
		return
	}
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.SetRepeat(r.Context(), mode)
	})
}

// TransferHandler moves playback to another device.
func (h *APIHandler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
		Play     bool   `json:"play"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		respondError(w, http.StatusBadRequest, "Missing deviceId", "")
		return
	}
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.Transfer(r.Context(), req.DeviceID, req.Play)
	})
}

// QueueHandler enqueues a track on the active device.
func (h *APIHandler) QueueHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URI == "" {
		respondError(w, http.StatusBadRequest, "Missing uri", "")
		return
	}
	h.transportCommand(w, r, func() error {
		client, err := ClientFromContext(r.Context())
		if err != nil {
			return err
		}
		return client.Queue(r.Context(), req.URI)
	})
}

func (h *APIHandler) transportCommand(w http.ResponseWriter, r *http.Request, run func() error) {
	if err := run(); err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DevicesHandler lists the user's playback devices.
func (h *APIHandler) DevicesHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	devices, err := client.Devices(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}

// LikedTracksHandler serves one page of the saved-tracks library.
func (h *APIHandler) LikedTracksHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	limit := queryInt(r, "limit", "50")
	offset := queryInt(r, "offset", "0")
	items, total, err := client.LikedTracks(r.Context(), limit, offset)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// LikedPlayHandler starts playback of the saved-tracks library at a
// global index, falling back through the resolver chain when no device
// is active.
func (h *APIHandler) LikedPlayHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	var req struct {
		Offset int `json:"offset"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	pageStart := req.Offset - req.Offset%50
	items, _, err := client.LikedTracks(r.Context(), 50, pageStart)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusNotFound, "No saved tracks to play", "")
		return
	}
	tracks := make([]model.RemoteTrack, len(items))
	for i, it := range items {
		tracks[i] = it.RemoteTrack
	}
	res, err := h.resolver.ResolveBatch(r.Context(), tracks, req.Offset-pageStart)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	resolutionsTotal.WithLabelValues(string(res.Target)).Inc()
	respondJSON(w, http.StatusOK, res)
}

// PreviewsHandler serves one page of saved tracks filtered down to
// those with a preview clip.
func (h *APIHandler) PreviewsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	limit := queryInt(r, "limit", "50")
	offset := queryInt(r, "offset", "0")
	items, total, err := client.LikedTracks(r.Context(), limit, offset)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	previews := make([]model.RemoteTrack, 0, len(items))
	for _, it := range items {
		if it.HasPreview() {
			previews = append(previews, it.RemoteTrack)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  previews,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// AlternativesHandler looks up a preview-carrying substitute for a
// track by name and artist.
func (h *APIHandler) AlternativesHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	name := r.URL.Query().Get("name")
	artist := r.URL.Query().Get("artist")
	if name == "" {
		respondError(w, http.StatusBadRequest, "Missing name parameter", "")
		return
	}
	query := name
	if artist != "" {
		query += " " + artist
	}
	candidates, err := client.SearchTracks(r.Context(), query, 10)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	alt := match.BestAlternative(candidates, name, artist)
	respondJSON(w, http.StatusOK, map[string]interface{}{"alternative": alt})
}

// RecommendationsHandler serves preview-carrying suggestions seeded
// from the user's saved tracks.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	limit := queryInt(r, "limit", "20")
	recs, err := client.Recommendations(r.Context(), limit)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": recs})
}

// RecentlyPlayedHandler serves the user's listening history.
func (h *APIHandler) RecentlyPlayedHandler(w http.ResponseWriter, r *http.Request) {
	client, err := ClientFromContext(r.Context())
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	limit := queryInt(r, "limit", "20")
	items, err := client.RecentlyPlayed(r.Context(), limit)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// LyricsHandler fetches lyrics for a track.
func (h *APIHandler) LyricsHandler(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		respondError(w, http.StatusBadRequest, "Missing artist or title parameter", "")
		return
	}
	text, err := h.lyrics.Fetch(r.Context(), artist, title)
	if errors.Is(err, lyrics.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No lyrics found", "")
		return
	}
	if err != nil {
		logger.Warn("lyrics lookup failed", logger.String("title", title), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Lyrics service unavailable", "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"artist": artist,
		"title":  title,
		"lyrics": text,
	})
}
