package server

import (
	"errors"
	"log"
	"net/http"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"
)

// FeedRenderer produces the feed document for the current directory
// state. Implemented by feed.Channel.
type FeedRenderer interface {
	XML() ([]byte, error)
}

type serverHandler struct {
	channel FeedRenderer
	root    string
	logger  *log.Logger
}

// New creates the HTTP handler: the feed document at "/" and every file
// under root at its root-relative path.
func New(channel FeedRenderer, root string, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	cleanRoot := filepath.Clean(root)
	absRoot, err := filepath.Abs(cleanRoot)
	if err != nil {
		logger.Printf("warning: unable to resolve absolute root %q: %v", root, err)
		absRoot = cleanRoot
	}

	h := &serverHandler{
		channel: channel,
		root:    absRoot,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handle)

	return logRequests(mux, logger)
}

func (h *serverHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		h.handleFeed(w, r)
		return
	}
	h.handleFile(w, r)
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := h.channel.XML()
	if err != nil {
		// A failed scan answers this request with an error but leaves
		// the server available for the next one.
		h.logger.Printf("failed to build feed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf8")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(data); err != nil {
		h.logger.Printf("failed to write feed: %v", err)
	}
}

func (h *serverHandler) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/")
	rel = pathpkg.Clean(rel)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	target := filepath.Join(h.root, filepath.FromSlash(rel))
	resolved, err := filepath.Abs(target)
	if err != nil {
		h.logger.Printf("failed to resolve path %s: %v", target, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !pathWithinRoot(h.root, resolved) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("failed to stat %s: %v", resolved, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, resolved)
}

func pathWithinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		duration := time.Since(start)
		logger.Printf("%s %s -> %d (%dB) in %s", r.Method, r.URL.Path, sw.status, sw.size, duration)
	})
}
