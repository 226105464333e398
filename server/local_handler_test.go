package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, contentType := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audioFiles"; filename=%q`, name))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake audio payload for " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadAddsTrack(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	body, contentType := multipartUpload(t, map[string]string{"song.mp3": "audio/mpeg"})

	req := httptest.NewRequest(http.MethodPost, "/api/local/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, catalog.Len())

	var resp struct {
		Uploaded int            `json:"uploaded"`
		Failed   int            `json:"failed"`
		Results  []uploadResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Uploaded)
	assert.Zero(t, resp.Failed)
	require.Len(t, resp.Results, 1)
	assert.NotEmpty(t, resp.Results[0].TrackID)
}

func TestUploadPartialSuccess(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	body, contentType := multipartUpload(t, map[string]string{
		"good.mp3":  "audio/mpeg",
		"video.mp4": "video/mp4",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/local/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// One file made it, so the batch reports success overall.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, catalog.Len())

	var resp struct {
		Uploaded int `json:"uploaded"`
		Failed   int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Uploaded)
	assert.Equal(t, 1, resp.Failed)
}

func TestUploadAllRejected(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	body, contentType := multipartUpload(t, map[string]string{"movie.mp4": "video/mp4"})

	req := httptest.NewRequest(http.MethodPost, "/api/local/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, catalog.Len())
}

func TestUploadThenStreamRange(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	payload := bytes.Repeat([]byte("q"), 500)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="audioFiles"; filename="e2e.mp3"`)
	header.Set("Content-Type", "audio/mpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/local/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, catalog.Len())

	var resp struct {
		Results []uploadResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)

	stream := streamBody(t, router, resp.Results[0].TrackID, "bytes=0-99")
	assert.Equal(t, http.StatusPartialContent, stream.Code)
	assert.Len(t, stream.Body.Bytes(), 100)
	assert.Equal(t, payload[:100], stream.Body.Bytes())
}

func TestDeleteTrackLifecycle(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	id := addTrackWithBytes(t, catalog, "temp.mp3", []byte("abc"))

	req := httptest.NewRequest(http.MethodDelete, "/api/local/tracks/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/local/tracks/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalSearchEndpoint(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	addTrackWithBytes(t, catalog, "Alpha_Song.mp3", []byte("abc"))
	addTrackWithBytes(t, catalog, "Beta_Song.mp3", []byte("def"))

	req := httptest.NewRequest(http.MethodGet, "/api/local/search?q=alpha", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestPlayerEndpointsRequireSession(t *testing.T) {
	_, router, _ := newTestHandler(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/player/devices"},
		{http.MethodGet, "/api/search/suggestions?q=test"},
		{http.MethodGet, "/api/tracks/4uLU6hMCjMI75M1A2tKUQC"},
		{http.MethodGet, "/api/artists/0OdUWJ0sBjDrqHygGUXeCF"},
		{http.MethodGet, "/api/artists/0OdUWJ0sBjDrqHygGUXeCF/top-tracks"},
		{http.MethodGet, "/api/playlists/featured"},
		{http.MethodPost, "/api/playlists"},
		{http.MethodPut, "/api/playlists/37i9dQZF1DXcBWIGoYBM5M"},
		{http.MethodPost, "/api/playlists/37i9dQZF1DXcBWIGoYBM5M/play"},
		{http.MethodPost, "/api/playlists/37i9dQZF1DXcBWIGoYBM5M/tracks"},
		{http.MethodDelete, "/api/playlists/37i9dQZF1DXcBWIGoYBM5M/tracks"},
	}
	for _, ep := range endpoints {
		req := httptest.NewRequest(ep.method, ep.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", ep.method, ep.path)
	}
}

func TestFeaturedPlaylistsRouteIsNotCapturedAsID(t *testing.T) {
	_, router, _ := newTestHandler(t)

	// Without a session both routes return 401 from the middleware,
	// but a route match mistake would surface as a 404 or a playlist
	// lookup for the literal id "featured".
	req := httptest.NewRequest(http.MethodGet, "/api/playlists/featured", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
