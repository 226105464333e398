package model

// RefKind discriminates the two sides of a track reference.
type RefKind string

const (
	RefLocal  RefKind = "local"
	RefRemote RefKind = "remote"
)

// TrackRef points at either a local catalog entry or a remote track.
// Exactly one side is populated, selected by Kind.
type TrackRef struct {
	Kind    RefKind      `json:"kind"`
	LocalID string       `json:"localId,omitempty"`
	Remote  *RemoteTrack `json:"remote,omitempty"`
}

// LocalRef builds a reference to a catalog entry.
func LocalRef(id string) TrackRef {
	return TrackRef{Kind: RefLocal, LocalID: id}
}

// RemoteRef builds a reference to a remote track.
func RemoteRef(t *RemoteTrack) TrackRef {
	return TrackRef{Kind: RefRemote, Remote: t}
}

// Key returns a stable identity used to coalesce duplicate play requests.
func (r TrackRef) Key() string {
	if r.Kind == RefLocal {
		return "local:" + r.LocalID
	}
	if r.Remote != nil {
		return "remote:" + r.Remote.URI
	}
	return "remote:"
}

// RepeatMode mirrors the remote service's repeat states.
type RepeatMode string

const (
	RepeatOff     RepeatMode = "off"
	RepeatTrack   RepeatMode = "track"
	RepeatContext RepeatMode = "context"
)

// ValidRepeatMode reports whether m names a known repeat mode.
func ValidRepeatMode(m RepeatMode) bool {
	switch m {
	case RepeatOff, RepeatTrack, RepeatContext:
		return true
	}
	return false
}

// PlayerStatus is the reformatted remote playback state served to clients.
type PlayerStatus struct {
	IsPlaying    bool         `json:"isPlaying"`
	ProgressMS   int64        `json:"progress"`
	DurationMS   int64        `json:"duration"`
	Volume       int          `json:"volume"`
	ShuffleState bool         `json:"shuffleState"`
	RepeatState  RepeatMode   `json:"repeatState"`
	Device       *Device      `json:"device,omitempty"`
	Track        *RemoteTrack `json:"track,omitempty"`
	Message      string       `json:"message,omitempty"`
}
