package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ShHaWkK/SpootifyCLI/logger"
)

// rangeSpec matches the single-range form "bytes=a-b" or "bytes=a-".
// Anything else is ignored and the full file is served.
var rangeSpec = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

var streamContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
}

// StreamHandler serves a catalog track's bytes with range support, so
// the audio element can start anywhere and seek freely.
//
// No Range header yields a plain 200 with the whole file. A valid
// partial range yields 206 with a Content-Range header and exactly the
// requested bytes. A range starting at or past the end of the file
// yields 416 with the file size in Content-Range, never a truncated
// 200.
func (h *APIHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	track, err := h.catalog.Find(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Track not found", "")
		return
	}

	file, err := os.Open(track.FilePath)
	if err != nil {
		logger.Error("failed to open track file",
			logger.String("id", id), logger.String("path", track.FilePath), logger.ErrorField(err))
		respondError(w, http.StatusNotFound, "Track file unavailable", "")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to stat track file", "")
		return
	}
	size := info.Size()

	contentType := streamContentTypes[filepath.Ext(track.FilePath)]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")

	start, end, partial := parseRange(r.Header.Get("Range"), size)
	if start < 0 {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	if !partial {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, file); err != nil {
			logger.Debug("stream aborted", logger.String("id", id), logger.ErrorField(err))
		}
		streamedBytes.Add(float64(size))
		return
	}

	length := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		logger.Error("seek failed", logger.String("id", id), logger.ErrorField(err))
		return
	}
	if _, err := io.CopyN(w, file, length); err != nil {
		logger.Debug("stream aborted", logger.String("id", id), logger.ErrorField(err))
	}
	streamedBytes.Add(float64(length))
}

// parseRange interprets a Range header against a file of the given
// size. It returns start=-1 for an unsatisfiable range (start beyond
// the file, or start after end). Headers that do not match the
// supported single-range form are treated as absent, yielding a full
// response. An omitted end means "through the last byte"; an end past
// the file is clamped.
func parseRange(header string, size int64) (start, end int64, partial bool) {
	if header == "" {
		return 0, size - 1, false
	}
	m := rangeSpec.FindStringSubmatch(header)
	if m == nil {
		return 0, size - 1, false
	}
	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, size - 1, false
	}
	end = size - 1
	if m[2] != "" {
		end, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0, size - 1, false
		}
	}
	if start >= size || start > end {
		return -1, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}
