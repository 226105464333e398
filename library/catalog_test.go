package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudioFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio but enough bytes"), 0o644))
	return path
}

func TestAddCreatesUniqueEntries(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	first := writeAudioFile(t, dir, "one.mp3")
	second := writeAudioFile(t, dir, "two.mp3")

	a, err := catalog.Add(first, "one.mp3", "audio/mpeg")
	require.NoError(t, err)
	b, err := catalog.Add(second, "two.mp3", "audio/mp3")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, catalog.Len())

	found, err := catalog.Find(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", found.Title)
	assert.Equal(t, "Unknown Artist", found.Artist)
}

func TestAddRejectsUnsupportedMIME(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	path := writeAudioFile(t, dir, "movie.mp4")
	_, err = catalog.Add(path, "movie.mp4", "video/mp4")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 0, catalog.Len())
}

func TestSupportedMIMEStripsParameters(t *testing.T) {
	assert.True(t, SupportedMIME("audio/mpeg; charset=binary"))
	assert.True(t, SupportedMIME("Audio/FLAC"))
	assert.False(t, SupportedMIME("text/plain"))
	assert.False(t, SupportedMIME(""))
}

func TestRemoveThenFindReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	path := writeAudioFile(t, dir, "gone.mp3")
	track, err := catalog.Add(path, "gone.mp3", "audio/mpeg")
	require.NoError(t, err)

	require.NoError(t, catalog.Remove(track.ID))
	_, err = catalog.Find(track.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoFileExists(t, path)
}

func TestRemoveUnknownID(t *testing.T) {
	catalog, err := NewCatalog(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, catalog.Remove("local_nope"), ErrNotFound)
}

func TestScanPicksUpAudioFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeAudioFile(t, dir, "a.mp3")
	writeAudioFile(t, dir, "b.flac")
	writeAudioFile(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	catalog, err := NewCatalog(dir)
	require.NoError(t, err)
	require.NoError(t, catalog.Scan())

	assert.Equal(t, 2, catalog.Len())

	// A second scan rebuilds rather than appends.
	require.NoError(t, catalog.Scan())
	assert.Equal(t, 2, catalog.Len())
}

func TestScanKeepsIDsOfCatalogedFiles(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	path := writeAudioFile(t, dir, "uploaded.mp3")
	track, err := catalog.Add(path, "uploaded.mp3", "audio/mpeg")
	require.NoError(t, err)

	// A file dropped in by hand triggers a watcher rescan; the id handed
	// out by the upload must survive it.
	writeAudioFile(t, dir, "dropped.mp3")
	require.NoError(t, catalog.Scan())

	assert.Equal(t, 2, catalog.Len())
	found, err := catalog.Find(track.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", found.Title)
}

func TestScanDropsEntriesForDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	keepPath := writeAudioFile(t, dir, "keep.mp3")
	keep, err := catalog.Add(keepPath, "keep.mp3", "audio/mpeg")
	require.NoError(t, err)
	gone, err := catalog.Add(writeAudioFile(t, dir, "gone.mp3"), "gone.mp3", "audio/mpeg")
	require.NoError(t, err)

	require.NoError(t, catalog.Remove(gone.ID))
	require.NoError(t, catalog.Scan())

	assert.Equal(t, 1, catalog.Len())
	_, err = catalog.Find(gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = catalog.Find(keep.ID)
	assert.NoError(t, err)
}

func TestAddTinyUntaggedFile(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	// Too short for any tag header; registration still succeeds with
	// filename-derived metadata and a zero duration.
	path := filepath.Join(dir, "tiny.mp3")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02}, 0o644))

	track, err := catalog.Add(path, "tiny.mp3", "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "tiny", track.Title)
	assert.Equal(t, "Unknown Artist", track.Artist)
	assert.Zero(t, track.Duration)
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir)
	require.NoError(t, err)

	for _, name := range []string{"Blue_Train.mp3", "Giant_Steps.mp3", "So_What.mp3"} {
		path := writeAudioFile(t, dir, name)
		_, err := catalog.Add(path, name, "audio/mpeg")
		require.NoError(t, err)
	}

	hits := catalog.Search("giant")
	require.Len(t, hits, 1)
	assert.Equal(t, "Giant_Steps", hits[0].Title)

	assert.Len(t, catalog.Search(""), 3)
	assert.Empty(t, catalog.Search("does-not-exist"))
}
