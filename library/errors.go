package library

import "errors"

var (
	// ErrNotFound means the track id has no catalog entry.
	ErrNotFound = errors.New("library: track not found")
	// ErrUnsupportedFormat means the upload MIME gate rejected the file
	// before metadata extraction was attempted.
	ErrUnsupportedFormat = errors.New("library: unsupported audio format")
	// ErrDeletionFailed means the backing file could not be removed; the
	// catalog entry is kept so the id never points at occupied disk space
	// it no longer knows about.
	ErrDeletionFailed = errors.New("library: failed to delete track file")
)
