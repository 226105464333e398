// Package player implements playback decisions and per-client playback
// state: where a requested track should play, how next/previous move
// through the active context, and the session mirror pushed to clients.
package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ShHaWkK/SpootifyCLI/core/match"
	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

// Gateway is the remote-service surface the resolver needs. It is
// satisfied by spotifyx.Client and by fakes in tests.
type Gateway interface {
	HasActiveDevice(ctx context.Context) (bool, error)
	Play(ctx context.Context, uris []string, offset *int) error
	SearchTracks(ctx context.Context, q string, limit int) ([]model.RemoteTrack, error)
	Recommendations(ctx context.Context, limit int) ([]model.RemoteTrack, error)
}

// Library resolves local track ids.
type Library interface {
	Find(id string) (*model.Track, error)
}

// Target says where playback ends up after resolution.
type Target string

const (
	// TargetRemote means the remote device is playing; nothing to do
	// locally.
	TargetRemote Target = "remote"
	// TargetEmbedded means the client should load a URL into its own
	// audio element.
	TargetEmbedded Target = "embedded"
	// TargetLocal means the client should stream a catalog track.
	TargetLocal Target = "local"
	// TargetFailed means every fallback was exhausted.
	TargetFailed Target = "failed"
)

// Resolution is the outcome of one play request.
type Resolution struct {
	Target Target `json:"target"`
	// Local is set when Target is local.
	Local *model.Track `json:"local_track,omitempty"`
	// Remote is the track that will actually sound. It differs from the
	// requested one when Substituted is true.
	Remote      *model.RemoteTrack `json:"remote_track,omitempty"`
	Substituted bool               `json:"substituted,omitempty"`
	Message     string             `json:"message,omitempty"`
}

// failedGuidance is shown when nothing at all can play.
const failedGuidance = "No playable source found. Open the player on one of your devices, or add local music."

// Resolver decides where a play request should be executed, walking a
// fixed fallback chain. Duplicate requests for the same track while one
// is still in flight are coalesced into a single play action; requests
// for different tracks run concurrently.
type Resolver struct {
	gateway Gateway
	library Library
	group   singleflight.Group
}

func NewResolver(gateway Gateway, library Library) *Resolver {
	return &Resolver{gateway: gateway, library: library}
}

// Resolve runs the fallback chain for a single track reference.
//
// Local references go straight to the catalog. Remote references try
// the active device first, then the track's own preview clip, then a
// search for a preview-carrying alternative (at most once), then a
// recommendation. An expired token stops the chain immediately since no
// later step could succeed either.
func (r *Resolver) Resolve(ctx context.Context, ref model.TrackRef) (*Resolution, error) {
	v, err, shared := r.group.Do(ref.Key(), func() (interface{}, error) {
		return r.resolve(ctx, ref)
	})
	if shared {
		logger.Debug("coalesced duplicate play request", logger.String("ref", ref.Key()))
	}
	if err != nil {
		return nil, err
	}
	return v.(*Resolution), nil
}

func (r *Resolver) resolve(ctx context.Context, ref model.TrackRef) (*Resolution, error) {
	if ref.Kind == model.RefLocal {
		track, err := r.library.Find(ref.LocalID)
		if err != nil {
			return nil, fmt.Errorf("resolve local track %s: %w", ref.LocalID, err)
		}
		return &Resolution{Target: TargetLocal, Local: track}, nil
	}
	if ref.Remote == nil {
		return nil, errors.New("remote reference without track data")
	}
	track := ref.Remote

	// Each step of the chain runs only once its predecessor's failure
	// condition is confirmed. A transient error is surfaced, not treated
	// as "no device" or "no candidate".
	active, err := r.gateway.HasActiveDevice(ctx)
	if err != nil {
		return nil, err
	}
	if active {
		err := r.gateway.Play(ctx, []string{track.URI}, nil)
		switch {
		case err == nil:
			return &Resolution{Target: TargetRemote, Remote: track}, nil
		case errors.Is(err, spotifyx.ErrUnauthorized):
			return nil, err
		case errors.Is(err, spotifyx.ErrNoActiveDevice):
			// Device disappeared between the check and the command.
		default:
			return nil, err
		}
	}
	return r.resolveEmbedded(ctx, track)
}

// resolveEmbedded is the no-device tail of the chain: own preview,
// alternative search, recommendations, failure.
func (r *Resolver) resolveEmbedded(ctx context.Context, track *model.RemoteTrack) (*Resolution, error) {
	if track.HasPreview() {
		return &Resolution{
			Target:  TargetEmbedded,
			Remote:  track,
			Message: "No active device. Playing a preview instead.",
		}, nil
	}

	query := strings.TrimSpace(track.Name + " " + strings.Join(track.Artists, " "))
	candidates, err := r.gateway.SearchTracks(ctx, query, 10)
	if err != nil {
		return nil, err
	}
	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0]
	}
	if alt := match.BestAlternative(candidates, track.Name, artist); alt != nil {
		return &Resolution{
			Target:      TargetEmbedded,
			Remote:      alt,
			Substituted: true,
			Message:     fmt.Sprintf("Playing an alternative version of %q.", track.Name),
		}, nil
	}

	recs, err := r.gateway.Recommendations(ctx, 10)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].HasPreview() {
			return &Resolution{
				Target:      TargetEmbedded,
				Remote:      &recs[i],
				Substituted: true,
				Message:     fmt.Sprintf("%q has no playable version. Playing a similar track.", track.Name),
			}, nil
		}
	}

	return &Resolution{Target: TargetFailed, Message: failedGuidance}, nil
}

// ResolveBatch plays a list of remote tracks starting at start. With an
// active device the whole list is handed to it in one command; without
// one, the chain falls back to embedded playback of the start track.
func (r *Resolver) ResolveBatch(ctx context.Context, tracks []model.RemoteTrack, start int) (*Resolution, error) {
	if len(tracks) == 0 {
		return nil, errors.New("empty track list")
	}
	if start < 0 || start >= len(tracks) {
		start = 0
	}
	active, err := r.gateway.HasActiveDevice(ctx)
	if err != nil {
		return nil, err
	}
	if active {
		uris := make([]string, len(tracks))
		for i, t := range tracks {
			uris[i] = t.URI
		}
		offset := start
		err := r.gateway.Play(ctx, uris, &offset)
		switch {
		case err == nil:
			return &Resolution{Target: TargetRemote, Remote: &tracks[start]}, nil
		case errors.Is(err, spotifyx.ErrUnauthorized):
			return nil, err
		case errors.Is(err, spotifyx.ErrNoActiveDevice):
		default:
			return nil, err
		}
	}
	return r.resolveEmbedded(ctx, &tracks[start])
}
