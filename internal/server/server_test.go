package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

type fakeChannel struct {
	data []byte
	err  error
}

func (f *fakeChannel) XML() ([]byte, error) {
	return f.data, f.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFeedServedAtRoot(t *testing.T) {
	root := t.TempDir()
	feedData := []byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel></channel></rss>`)
	handler := New(&fakeChannel{data: feedData}, root, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/xml; charset=utf8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Body.String() != string(feedData) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestFeedScanFailureReturns500(t *testing.T) {
	root := t.TempDir()
	handler := New(&fakeChannel{err: errors.New("scan failed")}, root, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	// The handler must keep answering once the condition clears.
	recovered := New(&fakeChannel{data: []byte("<rss/>")}, root, discardLogger())
	rec = httptest.NewRecorder()
	recovered.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after recovery, got %d", rec.Code)
	}
}

func TestFeedRejectsNonGET(t *testing.T) {
	handler := New(&fakeChannel{data: []byte("<rss/>")}, t.TempDir(), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStaticFileServedAtRelativePath(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "season1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := []byte("audio bytes")
	if err := os.WriteFile(filepath.Join(sub, "track.mp3"), content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	handler := New(&fakeChannel{}, root, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/season1/track.mp3", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != string(content) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestStaticMissingFileReturns404(t *testing.T) {
	handler := New(&fakeChannel{}, t.TempDir(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/nope.mp3", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStaticDirectoryReturns404(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	handler := New(&fakeChannel{}, root, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/sub/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for directory, got %d", rec.Code)
	}
}

func TestStaticRejectsNonGET(t *testing.T) {
	handler := New(&fakeChannel{}, t.TempDir(), discardLogger())

	req := httptest.NewRequest(http.MethodDelete, "/track.mp3", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestPathWithinRoot(t *testing.T) {
	root := string(filepath.Separator) + filepath.Join("srv", "audio")

	cases := map[string]bool{
		filepath.Join(root, "track.mp3"):          true,
		filepath.Join(root, "sub", "track.mp3"):   true,
		root:                                      true,
		filepath.Dir(root):                        false,
		string(filepath.Separator) + "etc/passwd": false,
	}

	for target, expected := range cases {
		if pathWithinRoot(root, target) != expected {
			t.Fatalf("pathWithinRoot(%q, %q): expected %v", root, target, expected)
		}
	}
}

func TestHeadRequestOnFeed(t *testing.T) {
	handler := New(&fakeChannel{data: []byte("<rss/>")}, t.TempDir(), discardLogger())

	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body for HEAD, got %d bytes", rec.Body.Len())
	}
}
