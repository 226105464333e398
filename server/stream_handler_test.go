package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShHaWkK/SpootifyCLI/cache"
	"github.com/ShHaWkK/SpootifyCLI/config"
	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/library"
)

func newTestHandler(t *testing.T) (*APIHandler, http.Handler, *library.Catalog) {
	t.Helper()
	cfg := &config.Config{
		MusicDir:      t.TempDir(),
		MaxUploadSize: 50 << 20,
		SessionSecret: "test-secret",
	}
	catalog, err := library.NewCatalog(cfg.MusicDir)
	require.NoError(t, err)
	store := cache.New(cfg)
	t.Cleanup(func() { store.Close() })
	auth := spotifyx.NewAuthenticator("test-client", "", "http://localhost/auth/callback")
	h := NewAPIHandler(catalog, store, auth, cfg)
	return h, Router(h), catalog
}

func addTrackWithBytes(t *testing.T, catalog *library.Catalog, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(catalog.Dir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	track, err := catalog.Add(path, name, "audio/mpeg")
	require.NoError(t, err)
	return track.ID
}

func streamBody(t *testing.T, router http.Handler, id, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/local/stream/"+id, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStreamFullFile(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	content := bytes.Repeat([]byte("x"), 1000)
	id := addTrackWithBytes(t, catalog, "full.mp3", content)

	rec := streamBody(t, router, id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestStreamPartialRange(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 251)
	}
	id := addTrackWithBytes(t, catalog, "partial.mp3", content)

	rec := streamBody(t, router, id, "bytes=0-99")
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-99/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, content[:100], rec.Body.Bytes())
}

func TestStreamOpenEndedRange(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	content := bytes.Repeat([]byte("y"), 500)
	id := addTrackWithBytes(t, catalog, "open.mp3", content)

	rec := streamBody(t, router, id, "bytes=400-")
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 400-499/500", rec.Header().Get("Content-Range"))
	assert.Len(t, rec.Body.Bytes(), 100)
}

func TestStreamRangeEndClamped(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	id := addTrackWithBytes(t, catalog, "clamp.mp3", bytes.Repeat([]byte("z"), 100))

	rec := streamBody(t, router, id, "bytes=50-100000")
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 50-99/100", rec.Header().Get("Content-Range"))
	assert.Len(t, rec.Body.Bytes(), 50)
}

func TestStreamRangeBeyondFileIs416(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	id := addTrackWithBytes(t, catalog, "oob.mp3", bytes.Repeat([]byte("z"), 100))

	rec := streamBody(t, router, id, "bytes=100-")
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */100", rec.Header().Get("Content-Range"))
}

func TestStreamInvertedRangeIs416(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	id := addTrackWithBytes(t, catalog, "inv.mp3", bytes.Repeat([]byte("z"), 100))

	rec := streamBody(t, router, id, "bytes=90-10")
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
}

func TestStreamMalformedRangeServesFullFile(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	content := bytes.Repeat([]byte("m"), 64)
	id := addTrackWithBytes(t, catalog, "mal.mp3", content)

	for _, header := range []string{"bytes=a-b", "items=0-10", "bytes=-50", "garbage"} {
		rec := streamBody(t, router, id, header)
		assert.Equal(t, http.StatusOK, rec.Code, "header %q", header)
		assert.Equal(t, content, rec.Body.Bytes())
	}
}

func TestStreamUnknownTrack(t *testing.T) {
	_, router, _ := newTestHandler(t)
	rec := streamBody(t, router, "local_missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamDeletedFileIs404(t *testing.T) {
	_, router, catalog := newTestHandler(t)
	id := addTrackWithBytes(t, catalog, "vanish.mp3", []byte("abc"))
	track, err := catalog.Find(id)
	require.NoError(t, err)
	require.NoError(t, os.Remove(track.FilePath))

	rec := streamBody(t, router, id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
