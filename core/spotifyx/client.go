package spotifyx

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/ShHaWkK/SpootifyCLI/model"
)

// Client is the gateway to the remote playback service. Every method
// returns errors already classified into the package sentinels, so
// callers branch with errors.Is instead of inspecting status codes.
type Client struct {
	api *spotify.Client
}

func NewClient(api *spotify.Client) *Client {
	return &Client{api: api}
}

// CurrentUserName returns the display name of the authenticated user.
func (c *Client) CurrentUserName(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", classifyRead(err)
	}
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.ID, nil
}

// Devices lists the user's known playback devices.
func (c *Client) Devices(ctx context.Context) ([]model.Device, error) {
	devices, err := c.api.PlayerDevices(ctx)
	if err != nil {
		return nil, classifyRead(err)
	}
	out := make([]model.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, model.Device{
			ID:     d.ID.String(),
			Name:   d.Name,
			Type:   d.Type,
			Active: d.Active,
			Volume: int(d.Volume),
		})
	}
	return out, nil
}

// HasActiveDevice reports whether any device is currently active.
func (c *Client) HasActiveDevice(ctx context.Context) (bool, error) {
	devices, err := c.Devices(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range devices {
		if d.Active {
			return true, nil
		}
	}
	return false, nil
}

// Play starts playback of the given track URIs on the active device,
// optionally at an offset into the list.
func (c *Client) Play(ctx context.Context, uris []string, offset *int) error {
	opts := &spotify.PlayOptions{}
	for _, u := range uris {
		opts.URIs = append(opts.URIs, spotify.URI(u))
	}
	if offset != nil {
		opts.PlaybackOffset = &spotify.PlaybackOffset{Position: offset}
	}
	return classify(c.api.PlayOpt(ctx, opts))
}

// PlayContext starts playback of a context (playlist, album, artist),
// optionally at a position within it.
func (c *Client) PlayContext(ctx context.Context, contextURI string, offset *int) error {
	uri := spotify.URI(contextURI)
	opts := &spotify.PlayOptions{PlaybackContext: &uri}
	if offset != nil {
		opts.PlaybackOffset = &spotify.PlaybackOffset{Position: offset}
	}
	return classify(c.api.PlayOpt(ctx, opts))
}

// Resume continues playback without changing the queue.
func (c *Client) Resume(ctx context.Context) error {
	return classify(c.api.Play(ctx))
}

func (c *Client) Pause(ctx context.Context) error {
	return classify(c.api.Pause(ctx))
}

func (c *Client) Next(ctx context.Context) error {
	return classify(c.api.Next(ctx))
}

func (c *Client) Previous(ctx context.Context) error {
	return classify(c.api.Previous(ctx))
}

// Seek jumps to the given position, in milliseconds, within the current
// track.
func (c *Client) Seek(ctx context.Context, positionMS int) error {
	return classify(c.api.Seek(ctx, positionMS))
}

// SetVolume sets the active device's volume, 0 to 100.
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return classify(c.api.Volume(ctx, percent))
}

func (c *Client) SetShuffle(ctx context.Context, shuffle bool) error {
	return classify(c.api.Shuffle(ctx, shuffle))
}

// SetRepeat sets the repeat mode: off, track or context.
func (c *Client) SetRepeat(ctx context.Context, mode model.RepeatMode) error {
	if !model.ValidRepeatMode(mode) {
		return fmt.Errorf("invalid repeat mode %q", mode)
	}
	return classify(c.api.Repeat(ctx, string(mode)))
}

// Transfer moves playback to the given device.
func (c *Client) Transfer(ctx context.Context, deviceID string, play bool) error {
	return classify(c.api.TransferPlayback(ctx, spotify.ID(deviceID), play))
}

// Queue appends a track to the active device's play queue.
func (c *Client) Queue(ctx context.Context, uri string) error {
	id := spotify.ID(trackIDFromURI(uri))
	return classify(c.api.QueueSong(ctx, id))
}

// Status snapshots the remote player. A nil state (nothing has played
// recently) is reported as a stopped player with an explanatory message
// rather than an error.
func (c *Client) Status(ctx context.Context) (*model.PlayerStatus, error) {
	state, err := c.api.PlayerState(ctx)
	if err != nil {
		return nil, classifyRead(err)
	}
	if state == nil || state.Item == nil {
		return &model.PlayerStatus{Message: "No active device found"}, nil
	}
	track := fullTrackToModel(state.Item)
	return &model.PlayerStatus{
		IsPlaying:    state.Playing,
		ProgressMS:   int64(state.Progress),
		DurationMS:   track.DurationMS,
		Volume:       int(state.Device.Volume),
		ShuffleState: state.ShuffleState,
		RepeatState:  model.RepeatMode(state.RepeatState),
		Device: &model.Device{
			ID:     state.Device.ID.String(),
			Name:   state.Device.Name,
			Type:   state.Device.Type,
			Active: state.Device.Active,
			Volume: int(state.Device.Volume),
		},
		Track: track,
	}, nil
}

// SearchTracks queries the catalog for tracks matching q.
func (c *Client) SearchTracks(ctx context.Context, q string, limit int) ([]model.RemoteTrack, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	result, err := c.api.Search(ctx, q, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, classifyRead(err)
	}
	if result.Tracks == nil {
		return nil, nil
	}
	out := make([]model.RemoteTrack, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		out = append(out, *fullTrackToModel(&result.Tracks.Tracks[i]))
	}
	return out, nil
}

// SearchResult groups search hits across the supported entity types.
type SearchResult struct {
	Tracks  []model.RemoteTrack `json:"tracks,omitempty"`
	Artists []ArtistSummary     `json:"artists,omitempty"`
	Albums  []AlbumSummary      `json:"albums,omitempty"`
}

type ArtistSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Followers uint   `json:"followers"`
	ImageURL  string `json:"image_url,omitempty"`
}

type AlbumSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Year     string `json:"year,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Search queries one entity type: track, artist or album.
func (c *Client) Search(ctx context.Context, q, entity string, limit int) (*SearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var st spotify.SearchType
	switch entity {
	case "artist":
		st = spotify.SearchTypeArtist
	case "album":
		st = spotify.SearchTypeAlbum
	case "", "track":
		st = spotify.SearchTypeTrack
	default:
		return nil, fmt.Errorf("unsupported search type %q", entity)
	}
	result, err := c.api.Search(ctx, q, st, spotify.Limit(limit))
	if err != nil {
		return nil, classifyRead(err)
	}
	out := &SearchResult{}
	if result.Tracks != nil {
		for i := range result.Tracks.Tracks {
			out.Tracks = append(out.Tracks, *fullTrackToModel(&result.Tracks.Tracks[i]))
		}
	}
	if result.Artists != nil {
		for _, a := range result.Artists.Artists {
			s := ArtistSummary{ID: a.ID.String(), Name: a.Name, Followers: uint(a.Followers.Count)}
			if len(a.Images) > 0 {
				s.ImageURL = a.Images[0].URL
			}
			out.Artists = append(out.Artists, s)
		}
	}
	if result.Albums != nil {
		for _, al := range result.Albums.Albums {
			s := AlbumSummary{ID: al.ID.String(), Name: al.Name}
			if len(al.Artists) > 0 {
				s.Artist = al.Artists[0].Name
			}
			if len(al.ReleaseDate) >= 4 {
				s.Year = al.ReleaseDate[:4]
			}
			if len(al.Images) > 0 {
				s.ImageURL = al.Images[0].URL
			}
			out.Albums = append(out.Albums, s)
		}
	}
	return out, nil
}

// LikedTrack is a saved track plus the moment it was saved.
type LikedTrack struct {
	model.RemoteTrack
	AddedAt string `json:"added_at,omitempty"`
}

// LikedTracks fetches one page of the user's saved tracks and the total
// count across all pages.
func (c *Client) LikedTracks(ctx context.Context, limit, offset int) ([]LikedTrack, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	page, err := c.api.CurrentUsersTracks(ctx, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, 0, classifyRead(err)
	}
	out := make([]LikedTrack, 0, len(page.Tracks))
	for i := range page.Tracks {
		out = append(out, LikedTrack{
			RemoteTrack: *fullTrackToModel(&page.Tracks[i].FullTrack),
			AddedAt:     page.Tracks[i].AddedAt,
		})
	}
	return out, int(page.Total), nil
}

// RecentlyPlayed returns the user's listening history, most recent
// first.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]model.RemoteTrack, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	if err != nil {
		return nil, classifyRead(err)
	}
	out := make([]model.RemoteTrack, 0, len(items))
	for i := range items {
		out = append(out, simpleTrackToModel(&items[i].Track))
	}
	return out, nil
}

// Recommendations asks the catalog for tracks similar to the user's
// most recently saved ones. Only tracks carrying a preview clip are
// returned, since the caller wants something it can always play.
func (c *Client) Recommendations(ctx context.Context, limit int) ([]model.RemoteTrack, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	saved, _, err := c.LikedTracks(ctx, 5, 0)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, nil
	}
	seeds := spotify.Seeds{}
	for _, s := range saved {
		seeds.Tracks = append(seeds.Tracks, spotify.ID(trackIDFromURI(s.URI)))
	}
	recs, err := c.api.GetRecommendations(ctx, seeds, nil, spotify.Limit(limit))
	if err != nil {
		return nil, classifyRead(err)
	}
	out := make([]model.RemoteTrack, 0, len(recs.Tracks))
	for i := range recs.Tracks {
		t := simpleTrackToModel(&recs.Tracks[i])
		if t.HasPreview() {
			out = append(out, t)
		}
	}
	return out, nil
}

// Playlist is a summary of one of the user's playlists.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	TrackCount int    `json:"track_count"`
	ImageURL   string `json:"image_url,omitempty"`
	URI        string `json:"uri"`
}

// Playlists lists the user's playlists.
func (c *Client) Playlists(ctx context.Context, limit int) ([]Playlist, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, classifyRead(err)
	}
	out := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		pl := Playlist{
			ID:         p.ID.String(),
			Name:       p.Name,
			Owner:      p.Owner.DisplayName,
			TrackCount: int(p.Tracks.Total),
			URI:        string(p.URI),
		}
		if len(p.Images) > 0 {
			pl.ImageURL = p.Images[0].URL
		}
		out = append(out, pl)
	}
	return out, nil
}

// CreatePlaylist makes a new playlist owned by the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, classifyRead(err)
	}
	created, err := c.api.CreatePlaylistForUser(ctx, user.ID, name, description, public, false)
	if err != nil {
		return nil, classify(err)
	}
	return &Playlist{
		ID:    created.ID.String(),
		Name:  created.Name,
		Owner: created.Owner.DisplayName,
		URI:   string(created.URI),
	}, nil
}

// RenamePlaylist changes a playlist's display name.
func (c *Client) RenamePlaylist(ctx context.Context, playlistID, name string) error {
	return classify(c.api.ChangePlaylistName(ctx, spotify.ID(playlistID), name))
}

// AddPlaylistTracks appends tracks, given as URIs or bare ids, to a
// playlist.
func (c *Client) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs(uris)...)
	return classify(err)
}

// RemovePlaylistTracks removes every occurrence of the given tracks
// from a playlist.
func (c *Client) RemovePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	_, err := c.api.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), trackIDs(uris)...)
	return classify(err)
}

func trackIDs(uris []string) []spotify.ID {
	ids := make([]spotify.ID, len(uris))
	for i, u := range uris {
		ids[i] = spotify.ID(trackIDFromURI(u))
	}
	return ids
}

// FeaturedPlaylists lists the service's current editorial selection,
// together with its tagline.
func (c *Client) FeaturedPlaylists(ctx context.Context, limit int) (string, []Playlist, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	message, page, err := c.api.FeaturedPlaylists(ctx, spotify.Limit(limit))
	if err != nil {
		return "", nil, classifyRead(err)
	}
	out := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		pl := Playlist{
			ID:         p.ID.String(),
			Name:       p.Name,
			Owner:      p.Owner.DisplayName,
			TrackCount: int(p.Tracks.Total),
			URI:        string(p.URI),
		}
		if len(p.Images) > 0 {
			pl.ImageURL = p.Images[0].URL
		}
		out = append(out, pl)
	}
	return message, out, nil
}

// Track fetches one track by id or URI.
func (c *Client) Track(ctx context.Context, idOrURI string) (*model.RemoteTrack, error) {
	ft, err := c.api.GetTrack(ctx, spotify.ID(trackIDFromURI(idOrURI)))
	if err != nil {
		return nil, classifyRead(err)
	}
	return fullTrackToModel(ft), nil
}

// Artist fetches one artist's profile.
func (c *Client) Artist(ctx context.Context, id string) (*ArtistSummary, error) {
	a, err := c.api.GetArtist(ctx, spotify.ID(id))
	if err != nil {
		return nil, classifyRead(err)
	}
	summary := &ArtistSummary{ID: a.ID.String(), Name: a.Name, Followers: uint(a.Followers.Count)}
	if len(a.Images) > 0 {
		summary.ImageURL = a.Images[0].URL
	}
	return summary, nil
}

// ArtistTopTracks lists an artist's most played tracks.
func (c *Client) ArtistTopTracks(ctx context.Context, id string) ([]model.RemoteTrack, error) {
	tracks, err := c.api.GetArtistsTopTracks(ctx, spotify.ID(id), spotify.CountryUSA)
	if err != nil {
		return nil, classifyRead(err)
	}
	out := make([]model.RemoteTrack, 0, len(tracks))
	for i := range tracks {
		out = append(out, *fullTrackToModel(&tracks[i]))
	}
	return out, nil
}

// PlaylistTracks fetches one page of a playlist's tracks.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) ([]model.RemoteTrack, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, 0, classifyRead(err)
	}
	out := make([]model.RemoteTrack, 0, len(page.Items))
	for i := range page.Items {
		if page.Items[i].Track.Track == nil {
			continue
		}
		out = append(out, *fullTrackToModel(page.Items[i].Track.Track))
	}
	return out, int(page.Total), nil
}

func fullTrackToModel(ft *spotify.FullTrack) *model.RemoteTrack {
	t := simpleTrackToModel(&ft.SimpleTrack)
	return &t
}

func simpleTrackToModel(st *spotify.SimpleTrack) model.RemoteTrack {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}
	t := model.RemoteTrack{
		ID:         st.ID.String(),
		URI:        string(st.URI),
		Name:       st.Name,
		Artists:    artists,
		AlbumName:  st.Album.Name,
		DurationMS: int64(st.Duration),
		PreviewURL: st.PreviewURL,
	}
	if len(st.Album.Images) > 0 {
		t.AlbumArt = st.Album.Images[0].URL
	}
	return t
}

// trackIDFromURI extracts the bare ID from a spotify:track:<id> URI.
// Bare IDs pass through unchanged.
func trackIDFromURI(uri string) string {
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == ':' {
			return uri[i+1:]
		}
	}
	return uri
}
