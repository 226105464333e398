package player

import (
	"context"
	"strings"
	"sync"

	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

// Source tags which side currently produces audio. Exactly one is
// active at a time.
type Source string

const (
	SourceNone     Source = "none"
	SourceRemote   Source = "remote"
	SourceEmbedded Source = "embedded"
)

// Transport is the subset of gateway commands the session routes to
// the remote side.
type Transport interface {
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, positionMS int) error
	SetVolume(ctx context.Context, percent int) error
}

// NowPlaying is the state snapshot pushed to the client after every
// change.
type NowPlaying struct {
	Source     Source           `json:"source"`
	Track      *model.TrackRef  `json:"track,omitempty"`
	Title      string           `json:"title,omitempty"`
	Artist     string           `json:"artist,omitempty"`
	AlbumArt   string           `json:"album_art,omitempty"`
	StreamURL  string           `json:"stream_url,omitempty"`
	Playing    bool             `json:"playing"`
	PositionMS int64            `json:"position_ms"`
	DurationMS int64            `json:"duration_ms"`
	Volume     int              `json:"volume"`
	Shuffle    bool             `json:"shuffle"`
	Repeat     model.RepeatMode `json:"repeat"`
	Message    string           `json:"message,omitempty"`
}

// Session mirrors one client's playback state. It reconciles two
// independent feeds, remote status polls and the client's own audio
// element events, and guarantees that switching sources replaces
// track, duration and position together rather than mixing fields from
// both.
type Session struct {
	mu       sync.Mutex
	resolver *Resolver
	remote   Transport
	nav      *Navigator
	notify   func(NowPlaying)

	state NowPlaying
	// wanted is the reference key of the track the client most recently
	// asked for. Resolution results for anything else are stale and
	// dropped.
	wanted string
}

// NewSession builds a session. notify is invoked with a state copy
// after every mutation; it must not call back into the session.
func NewSession(resolver *Resolver, remote Transport, notify func(NowPlaying)) *Session {
	if notify == nil {
		notify = func(NowPlaying) {}
	}
	return &Session{
		resolver: resolver,
		remote:   remote,
		nav:      NewNavigator(),
		notify:   notify,
		state:    NowPlaying{Source: SourceNone, Volume: 100, Repeat: model.RepeatOff},
	}
}

// Navigator exposes the session's playback context for handlers that
// load playlists or the local library into it.
func (s *Session) Navigator() *Navigator { return s.nav }

// Play resolves ref and, if the result still matches what the client
// wants by the time it lands, applies it.
func (s *Session) Play(ctx context.Context, ref model.TrackRef) error {
	key := ref.Key()
	s.mu.Lock()
	s.wanted = key
	s.mu.Unlock()

	res, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	s.apply(key, ref, res)
	return nil
}

// apply installs a resolution, discarding it when the client has moved
// on to another track since the request started.
func (s *Session) apply(key string, ref model.TrackRef, res *Resolution) {
	s.mu.Lock()
	if s.wanted != key {
		s.mu.Unlock()
		logger.Debug("discarding stale resolution", logger.String("ref", key))
		return
	}
	next := s.state
	next.Track = &ref
	next.Message = res.Message
	switch res.Target {
	case TargetRemote:
		next.Source = SourceRemote
		next.Title = res.Remote.Name
		next.Artist = strings.Join(res.Remote.Artists, ", ")
		next.AlbumArt = res.Remote.AlbumArt
		next.StreamURL = ""
		next.DurationMS = res.Remote.DurationMS
		next.PositionMS = 0
		next.Playing = true
	case TargetEmbedded:
		next.Source = SourceEmbedded
		next.Title = res.Remote.Name
		next.Artist = strings.Join(res.Remote.Artists, ", ")
		next.AlbumArt = res.Remote.AlbumArt
		next.StreamURL = res.Remote.PreviewURL
		next.DurationMS = res.Remote.DurationMS
		next.PositionMS = 0
		next.Playing = true
	case TargetLocal:
		next.Source = SourceEmbedded
		next.Title = res.Local.Title
		next.Artist = res.Local.Artist
		next.AlbumArt = ""
		next.StreamURL = "/api/local/stream/" + res.Local.ID
		next.DurationMS = res.Local.Duration
		next.PositionMS = 0
		next.Playing = true
	case TargetFailed:
		next.Source = SourceNone
		next.StreamURL = ""
		next.Playing = false
	}
	s.state = next
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// Next advances through the active context. auto marks track-end
// advances, which repeat=track turns into a replay.
func (s *Session) Next(ctx context.Context, auto bool) error {
	ref, ok, notice := s.nav.Next(auto)
	if !ok {
		s.halt(notice)
		return nil
	}
	return s.Play(ctx, ref)
}

// Previous steps back through the active context.
func (s *Session) Previous(ctx context.Context) error {
	ref, ok, notice := s.nav.Previous()
	if !ok {
		s.halt(notice)
		return nil
	}
	return s.Play(ctx, ref)
}

// halt stops playback in place, keeping the current track visible.
func (s *Session) halt(notice string) {
	s.mu.Lock()
	s.state.Playing = false
	s.state.Message = notice
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// TogglePlay flips play/pause on whichever source is active. The
// embedded side is mirrored immediately; the remote side gets an async
// command with the new state reflected optimistically.
func (s *Session) TogglePlay(ctx context.Context) {
	s.mu.Lock()
	s.state.Playing = !s.state.Playing
	playing := s.state.Playing
	source := s.state.Source
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)

	if source != SourceRemote {
		return
	}
	go func() {
		var err error
		if playing {
			err = s.remote.Resume(context.WithoutCancel(ctx))
		} else {
			err = s.remote.Pause(context.WithoutCancel(ctx))
		}
		if err != nil {
			logger.Warn("remote play toggle failed", logger.ErrorField(err))
		}
	}()
}

// Seek routes to the active source: embedded seeks are applied by the
// client's audio element and mirrored here, remote seeks go out as an
// async command with the position reflected optimistically.
func (s *Session) Seek(ctx context.Context, positionMS int64) {
	s.mu.Lock()
	if positionMS < 0 {
		positionMS = 0
	}
	if s.state.DurationMS > 0 && positionMS > s.state.DurationMS {
		positionMS = s.state.DurationMS
	}
	s.state.PositionMS = positionMS
	source := s.state.Source
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)

	if source != SourceRemote {
		return
	}
	go func() {
		if err := s.remote.Seek(context.WithoutCancel(ctx), int(positionMS)); err != nil {
			logger.Warn("remote seek failed", logger.ErrorField(err))
		}
	}()
}

// SetVolume routes like Seek.
func (s *Session) SetVolume(ctx context.Context, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.mu.Lock()
	s.state.Volume = percent
	source := s.state.Source
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)

	if source != SourceRemote {
		return
	}
	go func() {
		if err := s.remote.SetVolume(context.WithoutCancel(ctx), percent); err != nil {
			logger.Warn("remote volume change failed", logger.ErrorField(err))
		}
	}()
}

// SetShuffle updates the navigator and the mirror.
func (s *Session) SetShuffle(on bool) {
	s.nav.SetShuffle(on)
	s.mu.Lock()
	s.state.Shuffle = on
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// SetRepeat updates the navigator and the mirror.
func (s *Session) SetRepeat(mode model.RepeatMode) {
	if !model.ValidRepeatMode(mode) {
		return
	}
	s.nav.SetRepeat(mode)
	s.mu.Lock()
	s.state.Repeat = mode
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// AudioEvent is a playback milestone reported by the client's audio
// element.
type AudioEvent struct {
	Kind       string `json:"kind"` // timeupdate | loaded | ended | error
	PositionMS int64  `json:"position_ms,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// HandleAudioEvent folds an embedded-player event into the mirror.
// Events are ignored while the remote source is active, since they
// would describe a player that is no longer sounding.
func (s *Session) HandleAudioEvent(ctx context.Context, ev AudioEvent) {
	s.mu.Lock()
	if s.state.Source != SourceEmbedded {
		s.mu.Unlock()
		return
	}
	switch ev.Kind {
	case "timeupdate":
		s.state.PositionMS = ev.PositionMS
		s.mu.Unlock()
		return
	case "loaded":
		if ev.DurationMS > 0 {
			s.state.DurationMS = ev.DurationMS
		}
		snapshot := s.state
		s.mu.Unlock()
		s.notify(snapshot)
		return
	case "ended":
		s.mu.Unlock()
		if err := s.Next(ctx, true); err != nil {
			logger.Warn("auto-advance failed", logger.ErrorField(err))
		}
		return
	case "error":
		s.state.Playing = false
		s.state.Message = "Playback error: " + ev.Detail
		snapshot := s.state
		s.mu.Unlock()
		s.notify(snapshot)
		return
	}
	s.mu.Unlock()
}

// ApplyRemoteStatus reconciles a remote status poll into the mirror.
// Only applied while the remote source is active; all fields that
// describe the current track change together.
func (s *Session) ApplyRemoteStatus(st *model.PlayerStatus) {
	if st == nil {
		return
	}
	s.mu.Lock()
	if s.state.Source != SourceRemote {
		s.mu.Unlock()
		return
	}
	s.state.Playing = st.IsPlaying
	s.state.PositionMS = st.ProgressMS
	s.state.Volume = st.Volume
	if st.Track != nil {
		ref := model.RemoteRef(st.Track)
		s.state.Track = &ref
		s.state.Title = st.Track.Name
		s.state.Artist = strings.Join(st.Track.Artists, ", ")
		s.state.AlbumArt = st.Track.AlbumArt
		s.state.DurationMS = st.Track.DurationMS
	}
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// Snapshot returns a copy of the current mirror.
func (s *Session) Snapshot() NowPlaying {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
