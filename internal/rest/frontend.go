package rest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FrontendHandler serves the static single-page frontend (including its
// service worker and manifest), falling back to the index document for
// client-side routes.
type FrontendHandler struct {
	dir   string
	index string
}

func NewFrontendHandler(dir string, index string) *FrontendHandler {
	return &FrontendHandler{dir: dir, index: index}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	if reqPath == "" || reqPath == "." {
		reqPath = h.index
	}

	full := filepath.Join(h.dir, reqPath)
	if info, err := os.Stat(full); err != nil || info.IsDir() {
		// Unknown paths get the index document (single-page app routing).
		full = filepath.Join(h.dir, h.index)
	}

	// The service worker must be allowed to control the whole origin.
	if filepath.Base(full) == "service-worker.js" {
		w.Header().Set("Service-Worker-Allowed", "/")
	}

	http.ServeFile(w, r, full)
}
