// Package library maintains the local music catalog: an in-memory registry
// of uploaded audio files rebuilt from disk on every start, backing the
// embedded fallback player.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

// Catalog is the single owner of the local track list. Uploads, deletes and
// scans are the only writers; handlers and the resolver read.
type Catalog struct {
	mu     sync.RWMutex
	dir    string
	tracks []*model.Track
	byID   map[string]*model.Track
}

// NewCatalog creates an empty catalog rooted at dir. The directory is
// created if it does not exist.
func NewCatalog(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create music dir %s: %w", dir, err)
	}
	return &Catalog{
		dir:  dir,
		byID: make(map[string]*model.Track),
	}, nil
}

// Dir returns the directory the catalog scans and stores uploads in.
func (c *Catalog) Dir() string {
	return c.dir
}

func newTrackID() string {
	return "local_" + uuid.NewString()
}

// Scan reconciles the catalog with the files on disk. Files already
// cataloged keep their entry, so ids handed out by earlier uploads and
// the stream URLs built from them survive a rescan. New files are
// registered, entries whose file vanished are dropped. Files whose
// metadata cannot be read are skipped with a warning; one corrupt file
// never aborts the scan.
func (c *Catalog) Scan() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read music dir %s: %w", c.dir, err)
	}

	c.mu.RLock()
	byPath := make(map[string]*model.Track, len(c.tracks))
	for _, t := range c.tracks {
		byPath[t.FilePath] = t
	}
	c.mu.RUnlock()

	tracks := make([]*model.Track, 0, len(entries))
	byID := make(map[string]*model.Track, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !hasAudioExtension(entry.Name()) {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		if existing, ok := byPath[path]; ok {
			tracks = append(tracks, existing)
			byID[existing.ID] = existing
			continue
		}
		track, err := extractMetadata(path, entry.Name())
		if err != nil {
			logger.Warn("skipping unreadable audio file",
				logger.String("file", entry.Name()),
				logger.ErrorField(err))
			continue
		}
		track.ID = newTrackID()
		track.AddedAt = time.Now().UTC()
		tracks = append(tracks, track)
		byID[track.ID] = track
	}

	c.mu.Lock()
	c.tracks = tracks
	c.byID = byID
	c.mu.Unlock()

	logger.Info("local library loaded", logger.Int("tracks", len(tracks)))
	return nil
}

// Add registers an already-stored file under a fresh id. contentType is
// checked against the upload gate before metadata extraction is attempted;
// originalName supplies the display fallback for untagged files.
func (c *Catalog) Add(path, originalName, contentType string) (*model.Track, error) {
	if !SupportedMIME(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}

	track, err := extractMetadata(path, originalName)
	if err != nil {
		return nil, fmt.Errorf("extract metadata for %s: %w", originalName, err)
	}
	track.ID = newTrackID()
	track.AddedAt = time.Now().UTC()

	c.mu.Lock()
	c.tracks = append(c.tracks, track)
	c.byID[track.ID] = track
	c.mu.Unlock()

	return track, nil
}

// Remove deletes the catalog entry and its backing file. When the file
// cannot be removed the entry is kept and ErrDeletionFailed returned.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	track, ok := c.byID[id]
	if !ok {
		return ErrNotFound
	}

	if err := os.Remove(track.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrDeletionFailed, err)
	}

	delete(c.byID, id)
	for i, t := range c.tracks {
		if t.ID == id {
			c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
			break
		}
	}
	return nil
}

// Find returns the track for id or ErrNotFound.
func (c *Catalog) Find(id string) (*model.Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	track, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return track, nil
}

// List returns the catalog in scan/upload order.
func (c *Catalog) List() []*model.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*model.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// Search performs a case-insensitive substring match over title, artist and
// album, returning matches in catalog order. An empty query returns the
// full catalog.
func (c *Catalog) Search(query string) []*model.Track {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.List()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*model.Track
	for _, t := range c.tracks {
		haystack := strings.ToLower(t.Title + " " + t.Artist + " " + t.Album)
		if strings.Contains(haystack, query) {
			out = append(out, t)
		}
	}
	return out
}
