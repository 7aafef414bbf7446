package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yegors/tailwinds/pkg/logger"
)

// StaticFileHandler serves the UI bundle from disk. Files are read on every
// request so a rebuilt bundle shows up without a restart.
type StaticFileHandler struct {
	root   string
	logger *logger.Logger
}

// NewStaticFileHandler creates a new static file handler
func NewStaticFileHandler(root string, log *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		root:   root,
		logger: log.Named("static-handler"),
	}
}

// ServeHTTP serves the requested file, or index.html for the root and for
// directories
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")

	root, err := filepath.Abs(h.root)
	if err != nil {
		h.logger.Error("Failed to resolve static directory", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	full := filepath.Join(root, rel)
	if inside, err := filepath.Rel(root, full); err != nil || strings.HasPrefix(inside, "..") {
		h.logger.Warn("Rejected path outside static directory", logger.String("path", r.URL.Path))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil {
		if os.IsNotExist(err) {
			h.logger.Debug("File not found", logger.String("path", full))
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Failed to stat file", logger.Error(err), logger.String("path", full))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeFile(w, r, full)
}
