package library

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

// allowedMIMETypes is the upload gate. Anything else is rejected before
// metadata extraction is attempted.
var allowedMIMETypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/flac",
	"audio/ogg",
}

// SupportedMIME reports whether the given content type passes the upload gate.
func SupportedMIME(contentType string) bool {
	// Strip any parameters, e.g. "audio/mpeg; charset=binary".
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	for _, t := range allowedMIMETypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// audioExtensions gates files picked up by directory scans, where no MIME
// type is available.
var audioExtensions = []string{".mp3", ".wav", ".flac", ".ogg", ".oga"}

func hasAudioExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range audioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// extractMetadata reads the embedded tags of an audio file and builds a
// track record. Missing tags fall back to the file name and placeholder
// artist/album, matching what the dashboard displays for untagged files.
// mp3 durations are probed from the frame headers; other containers stay
// at zero until the embedded player reports the effective duration.
func extractMetadata(path, originalName string) (*model.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	title := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	artist := "Unknown Artist"
	album := "Unknown Album"

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged files are the common case, and tag reports them in
		// several ways: ErrNoTagsFound, but also seek and EOF errors on
		// files too short to hold a header. All of them keep the
		// filename-derived fields.
		logger.Debug("no readable tags",
			logger.String("file", originalName),
			logger.ErrorField(err))
	} else {
		if t := strings.TrimSpace(meta.Title()); t != "" {
			title = t
		}
		if a := strings.TrimSpace(meta.Artist()); a != "" {
			artist = a
		}
		if a := strings.TrimSpace(meta.Album()); a != "" {
			album = a
		}
	}

	return &model.Track{
		Title:    title,
		Artist:   artist,
		Album:    album,
		Duration: mp3Duration(path),
		FilePath: path,
		FileName: filepath.Base(path),
		Type:     model.TrackTypeLocal,
	}, nil
}

// mp3Duration sums the frame durations of an mp3 stream, in
// milliseconds. Undecodable input yields zero rather than an error, so a
// file with no readable frames still registers.
func mp3Duration(path string) int64 {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return 0
	}
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var total time.Duration
	dec := mp3.NewDecoder(f)
	var frame mp3.Frame
	skipped := 0
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}
	return total.Milliseconds()
}
