package http

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/logger"

	"github.com/gorilla/mux"
)

// PhotoHandler serves ID photos written by the local mock storage so they can
// be viewed during development.
type PhotoHandler struct {
	dir string
}

func NewPhotoHandler(dir string) *PhotoHandler {
	return &PhotoHandler{dir: dir}
}

// Download handles GET /uploads/photos/{name}.
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, r, apperr.Validation("name", "Invalid photo name"), "photo download")
		return
	}

	file, err := os.Open(filepath.Join(h.dir, name))
	if err != nil {
		writeError(w, r, apperr.NotFound("Photo", name), "photo download")
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Failed to stream photo", "name", name, "error", err)
	}
}
