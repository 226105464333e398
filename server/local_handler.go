package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ShHaWkK/SpootifyCLI/library"
	"github.com/ShHaWkK/SpootifyCLI/logger"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

// safeFilename strips path components and anything shells or browsers
// might choke on, keeping the extension.
func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	if name == "" || name == "." {
		name = "upload.dat"
	}
	return name
}

// LibraryHandler lists the local catalog.
func (h *APIHandler) LibraryHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": h.catalog.List(),
		"count":  h.catalog.Len(),
	})
}

// LocalSearchHandler filters the catalog by a substring query. An empty
// query returns everything.
func (h *APIHandler) LocalSearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	tracks := h.catalog.Search(q)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": tracks,
		"count":  len(tracks),
	})
}

type uploadResult struct {
	FileName string `json:"fileName"`
	Success  bool   `json:"success"`
	TrackID  string `json:"trackId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadHandler ingests one or more audio files from a multipart form.
// Each file succeeds or fails on its own; one bad file never aborts the
// batch.
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err), "")
		return
	}
	files := r.MultipartForm.File["audioFiles"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "Missing 'audioFiles' in form", "")
		return
	}

	results := make([]uploadResult, 0, len(files))
	succeeded := 0
	for _, header := range files {
		res := h.ingestUpload(header)
		if res.Success {
			succeeded++
			uploadsTotal.WithLabelValues("ok").Inc()
		} else {
			uploadsTotal.WithLabelValues("failed").Inc()
		}
		results = append(results, res)
	}

	status := http.StatusOK
	if succeeded == 0 {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, map[string]interface{}{
		"results":  results,
		"uploaded": succeeded,
		"failed":   len(files) - succeeded,
	})
}

// ingestUpload saves one uploaded file into the music directory and
// registers it with the catalog. The saved file is removed again when
// registration fails, so rejects leave no orphans on disk.
func (h *APIHandler) ingestUpload(header *multipart.FileHeader) uploadResult {
	result := uploadResult{FileName: header.Filename}
	contentType := header.Header.Get("Content-Type")
	if !library.SupportedMIME(contentType) {
		result.Error = fmt.Sprintf("unsupported media type %q", contentType)
		return result
	}

	src, err := header.Open()
	if err != nil {
		result.Error = fmt.Sprintf("failed to open upload: %v", err)
		return result
	}
	defer src.Close()

	destPath := filepath.Join(h.catalog.Dir(), safeFilename(header.Filename))
	dest, err := os.Create(destPath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to save file: %v", err)
		return result
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		result.Error = fmt.Sprintf("failed to save file: %v", err)
		return result
	}
	dest.Close()

	track, err := h.catalog.Add(destPath, header.Filename, contentType)
	if err != nil {
		os.Remove(destPath)
		result.Error = err.Error()
		return result
	}
	logger.Info("uploaded track",
		logger.String("id", track.ID),
		logger.String("title", track.Title),
		logger.String("file", track.FileName))
	result.Success = true
	result.TrackID = track.ID
	return result
}

// TrackHandler returns one catalog entry.
func (h *APIHandler) TrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	track, err := h.catalog.Find(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Track not found", "")
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// DeleteTrackHandler removes a catalog entry and its file.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.catalog.Remove(id)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, library.ErrNotFound):
		respondError(w, http.StatusNotFound, "Track not found", "")
	case errors.Is(err, library.ErrDeletionFailed):
		respondError(w, http.StatusInternalServerError, "Failed to delete track file", "")
	default:
		respondError(w, http.StatusInternalServerError, err.Error(), "")
	}
}

// RefreshHandler rebuilds the catalog from the music directory.
func (h *APIHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Scan(); err != nil {
		logger.Error("library rescan failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Library rescan failed", "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   h.catalog.Len(),
	})
}
