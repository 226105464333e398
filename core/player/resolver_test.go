package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/library"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

type fakeGateway struct {
	active    bool
	activeErr error

	playErr   error
	playCalls atomic.Int32
	playGate  chan struct{} // when set, Play blocks until closed

	searchResults []model.RemoteTrack
	searchErr     error
	searchCalls   atomic.Int32

	recResults []model.RemoteTrack
	recErr     error
	recCalls   atomic.Int32
}

func (g *fakeGateway) HasActiveDevice(ctx context.Context) (bool, error) {
	return g.active, g.activeErr
}

func (g *fakeGateway) Play(ctx context.Context, uris []string, offset *int) error {
	g.playCalls.Add(1)
	if g.playGate != nil {
		<-g.playGate
	}
	return g.playErr
}

func (g *fakeGateway) SearchTracks(ctx context.Context, q string, limit int) ([]model.RemoteTrack, error) {
	g.searchCalls.Add(1)
	return g.searchResults, g.searchErr
}

func (g *fakeGateway) Recommendations(ctx context.Context, limit int) ([]model.RemoteTrack, error) {
	g.recCalls.Add(1)
	return g.recResults, g.recErr
}

type fakeLibrary struct {
	tracks map[string]*model.Track
}

func (l *fakeLibrary) Find(id string) (*model.Track, error) {
	track, ok := l.tracks[id]
	if !ok {
		return nil, library.ErrNotFound
	}
	return track, nil
}

func remoteTrack(name, uri, preview string) *model.RemoteTrack {
	return &model.RemoteTrack{
		ID:         uri,
		URI:        uri,
		Name:       name,
		Artists:    []string{"Test Artist"},
		PreviewURL: preview,
	}
}

func TestResolveLocalTrack(t *testing.T) {
	lib := &fakeLibrary{tracks: map[string]*model.Track{
		"local_1": {ID: "local_1", Title: "Home Recording"},
	}}
	r := NewResolver(&fakeGateway{}, lib)

	res, err := r.Resolve(context.Background(), model.LocalRef("local_1"))
	require.NoError(t, err)
	assert.Equal(t, TargetLocal, res.Target)
	assert.Equal(t, "Home Recording", res.Local.Title)
}

func TestResolveLocalUnknownID(t *testing.T) {
	r := NewResolver(&fakeGateway{}, &fakeLibrary{tracks: map[string]*model.Track{}})
	_, err := r.Resolve(context.Background(), model.LocalRef("local_missing"))
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestResolveActiveDeviceGoesRemote(t *testing.T) {
	gw := &fakeGateway{active: true}
	r := NewResolver(gw, &fakeLibrary{})

	res, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "")))
	require.NoError(t, err)
	assert.Equal(t, TargetRemote, res.Target)
	assert.Equal(t, int32(1), gw.playCalls.Load())
	assert.Zero(t, gw.searchCalls.Load(), "no fallback lookups with an active device")
	assert.Zero(t, gw.recCalls.Load())
}

func TestResolveUnauthorizedIsTerminal(t *testing.T) {
	gw := &fakeGateway{active: true, playErr: spotifyx.ErrUnauthorized}
	r := NewResolver(gw, &fakeLibrary{})

	_, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "https://p/1")))
	assert.ErrorIs(t, err, spotifyx.ErrUnauthorized)
	assert.Zero(t, gw.searchCalls.Load(), "no fallback after an auth failure")
}

func TestResolveDeviceRaceFallsBackToPreview(t *testing.T) {
	// Device check says active, but the play command races a 404.
	gw := &fakeGateway{active: true, playErr: spotifyx.ErrNoActiveDevice}
	r := NewResolver(gw, &fakeLibrary{})

	res, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "https://p/1")))
	require.NoError(t, err)
	assert.Equal(t, TargetEmbedded, res.Target)
	assert.Equal(t, "https://p/1", res.Remote.PreviewURL)
	assert.Zero(t, gw.searchCalls.Load(), "own preview wins without an alternative search")
}

func TestResolveNoDevicePreviewWinsWithoutSearch(t *testing.T) {
	gw := &fakeGateway{active: false}
	r := NewResolver(gw, &fakeLibrary{})

	res, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "https://p/1")))
	require.NoError(t, err)
	assert.Equal(t, TargetEmbedded, res.Target)
	assert.False(t, res.Substituted)
	assert.Zero(t, gw.playCalls.Load())
	assert.Zero(t, gw.searchCalls.Load())
	assert.Zero(t, gw.recCalls.Load())
}

func TestResolveAlternativeSearchRunsOnce(t *testing.T) {
	gw := &fakeGateway{
		active: false,
		searchResults: []model.RemoteTrack{
			*remoteTrack("Song", "spotify:track:alt", "https://p/alt"),
		},
	}
	r := NewResolver(gw, &fakeLibrary{})

	res, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "")))
	require.NoError(t, err)
	assert.Equal(t, TargetEmbedded, res.Target)
	assert.True(t, res.Substituted)
	assert.Equal(t, "spotify:track:alt", res.Remote.URI)
	assert.Equal(t, int32(1), gw.searchCalls.Load())
	assert.Zero(t, gw.recCalls.Load(), "recommendations not needed when an alternative exists")
}

func TestResolveRecommendationFallback(t *testing.T) {
	gw := &fakeGateway{
		active: false,
		recResults: []model.RemoteTrack{
			*remoteTrack("No Preview Here", "spotify:track:r1", ""),
			*remoteTrack("With Preview", "spotify:track:r2", "https://p/r2"),
		},
	}
	r := NewResolver(gw, &fakeLibrary{})

	res, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "")))
	require.NoError(t, err)
	assert.Equal(t, TargetEmbedded, res.Target)
	assert.True(t, res.Substituted)
	assert.Equal(t, "spotify:track:r2", res.Remote.URI)
	assert.Equal(t, int32(1), gw.searchCalls.Load())
	assert.Equal(t, int32(1), gw.recCalls.Load())
}

func TestResolveSurfacesTransientDeviceCheckError(t *testing.T) {
	boom := errors.New("network timeout")
	gw := &fakeGateway{activeErr: boom}
	r := NewResolver(gw, &fakeLibrary{})

	// Even a track with its own preview must not fall back: only a
	// confirmed no-device condition advances the chain.
	_, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "https://p/1")))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, gw.playCalls.Load())
	assert.Zero(t, gw.searchCalls.Load())
	assert.Zero(t, gw.recCalls.Load())
}

func TestResolveSurfacesTransientSearchError(t *testing.T) {
	boom := errors.New("remote hiccup")
	gw := &fakeGateway{active: false, searchErr: boom}
	r := NewResolver(gw, &fakeLibrary{})

	_, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "")))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, gw.recCalls.Load(), "a failed search is not a confirmed no-candidate")
}

func TestResolveSurfacesTransientRecommendationsError(t *testing.T) {
	boom := errors.New("remote hiccup")
	gw := &fakeGateway{active: false, recErr: boom}
	r := NewResolver(gw, &fakeLibrary{})

	_, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "")))
	assert.ErrorIs(t, err, boom)
}

func TestResolveBatchSurfacesTransientDeviceCheckError(t *testing.T) {
	boom := errors.New("network timeout")
	gw := &fakeGateway{activeErr: boom}
	r := NewResolver(gw, &fakeLibrary{})

	_, err := r.ResolveBatch(context.Background(), []model.RemoteTrack{*remoteTrack("A", "spotify:track:a", "")}, 0)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, gw.playCalls.Load())
}

func TestResolveAllExhaustedFails(t *testing.T) {
	gw := &fakeGateway{active: false}
	r := NewResolver(gw, &fakeLibrary{})

	res, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", "spotify:track:1", "")))
	require.NoError(t, err)
	assert.Equal(t, TargetFailed, res.Target)
	assert.NotEmpty(t, res.Message)
}

func TestResolveCoalescesDuplicateRequests(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{active: true, playGate: gate}
	r := NewResolver(gw, &fakeLibrary{})
	ref := model.RemoteRef(remoteTrack("Song", "spotify:track:1", ""))

	var wg sync.WaitGroup
	results := make([]*Resolution, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve(context.Background(), ref)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	// Let both goroutines reach the resolver before the play command
	// completes.
	for gw.playCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), gw.playCalls.Load(), "duplicate pending requests share one play action")
	assert.Equal(t, results[0], results[1])
}

func TestResolveDistinctTracksRunConcurrently(t *testing.T) {
	gw := &fakeGateway{active: true}
	r := NewResolver(gw, &fakeLibrary{})

	var wg sync.WaitGroup
	for _, uri := range []string{"spotify:track:1", "spotify:track:2"} {
		wg.Add(1)
		go func(uri string) {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), model.RemoteRef(remoteTrack("Song", uri, "")))
			assert.NoError(t, err)
		}(uri)
	}
	wg.Wait()
	assert.Equal(t, int32(2), gw.playCalls.Load())
}

func TestResolveBatchWithOffset(t *testing.T) {
	gw := &fakeGateway{active: true}
	r := NewResolver(gw, &fakeLibrary{})
	tracks := []model.RemoteTrack{
		*remoteTrack("A", "spotify:track:a", ""),
		*remoteTrack("B", "spotify:track:b", ""),
		*remoteTrack("C", "spotify:track:c", ""),
	}

	res, err := r.ResolveBatch(context.Background(), tracks, 1)
	require.NoError(t, err)
	assert.Equal(t, TargetRemote, res.Target)
	assert.Equal(t, "spotify:track:b", res.Remote.URI)
}
