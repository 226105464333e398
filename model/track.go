package model

import "time"

// Track represents an audio file in the local library.
type Track struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Duration int64     `json:"duration"` // milliseconds
	FilePath string    `json:"-"`        // absolute path, never exposed in API responses
	FileName string    `json:"fileName"`
	Type     string    `json:"type"` // always "local"
	AddedAt  time.Time `json:"addedAt"`
}

// TrackTypeLocal is the provenance tag carried by every catalog entry.
const TrackTypeLocal = "local"

// RemoteTrack is a cached view of a track owned by the remote streaming
// service. Only the service mutates it; we read and display a copy.
type RemoteTrack struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	AlbumName  string   `json:"albumName"`
	AlbumArt   string   `json:"albumArt,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	PreviewURL string   `json:"preview_url,omitempty"`
}

// HasPreview reports whether the track can be played through the embedded
// player. A remote track is locally playable via fallback only if its
// preview URL is non-empty.
func (t *RemoteTrack) HasPreview() bool {
	return t != nil && t.PreviewURL != ""
}

// Device is a snapshot of one remote playback endpoint. Snapshots are
// refreshed on demand and never cached across resolution cycles.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"is_active"`
	Volume int    `json:"volume_percent"`
}
