package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edumarques81/stellar-media-library/internal/artwork"
	"github.com/edumarques81/stellar-media-library/internal/version"
)

// MockPinger implements Pinger for testing.
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping() error { return m.Err }

// MockResolver implements ArtResolver for testing.
type MockResolver struct {
	Image    *artwork.Image
	Err      error
	LastPath string
	LastSize int
}

func (m *MockResolver) Resolve(uri string, size int) (*artwork.Image, error) {
	m.LastPath = uri
	m.LastSize = size
	return m.Image, m.Err
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		mpd    Pinger
		status int
		body   string
	}{
		{"connected", &MockPinger{}, http.StatusOK, `"mpd":"connected"`},
		{"disconnected", &MockPinger{Err: errors.New("down")}, http.StatusServiceUnavailable, `"mpd":"disconnected"`},
		{"no mpd", nil, http.StatusOK, `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewRouter(Options{MPD: tt.mpd}), "/health")
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("Expected body to contain %s, got %s", tt.body, rec.Body.String())
			}
		})
	}
}

func TestVersion(t *testing.T) {
	rec := serve(NewRouter(Options{}), "/api/v1/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var info version.Info
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode version: %v", err)
	}
	if info.Name != version.Name {
		t.Errorf("Expected name %s, got %s", version.Name, info.Name)
	}
}

func TestAlbumArt(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		res := &MockResolver{Image: &artwork.Image{Data: []byte("img"), ContentType: "image/png"}}
		rec := serve(NewRouter(Options{Artwork: res}), "/albumart?path=Music%2Fa+b.flac&size=300")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "image/png" || rec.Body.String() != "img" {
			t.Errorf("Unexpected response: %s %q", rec.Header().Get("Content-Type"), rec.Body.String())
		}
		if res.LastPath != "Music/a b.flac" || res.LastSize != 300 {
			t.Errorf("Unexpected resolve args: %q %d", res.LastPath, res.LastSize)
		}
	})

	tests := []struct {
		name   string
		target string
		res    *MockResolver
		status int
	}{
		{"missing path", "/albumart", &MockResolver{}, http.StatusBadRequest},
		{"bad size", "/albumart?path=a&size=big", &MockResolver{}, http.StatusBadRequest},
		{"not found", "/albumart?path=a", &MockResolver{Err: artwork.ErrNoArtwork}, http.StatusNotFound},
		{"failure", "/albumart?path=a", &MockResolver{Err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewRouter(Options{Artwork: tt.res}), tt.target)
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(Options{})
	serve(h, "/health")

	rec := serve(h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stellar_library_http_requests_total") {
		t.Errorf("Expected HTTP request counter in metrics output")
	}
}

func TestSocketMount(t *testing.T) {
	called := false
	sock := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	rec := serve(NewRouter(Options{Socket: sock}), "/socket.io/?EIO=4&transport=polling")
	if !called || rec.Code != http.StatusTeapot {
		t.Errorf("Expected socket handler to serve, got called=%v status=%d", called, rec.Code)
	}
}

func TestStaticSPA(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0644)
	os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0644)

	h := NewRouter(Options{StaticDir: dir})

	if rec := serve(h, "/app.js"); !strings.Contains(rec.Body.String(), "console.log") {
		t.Errorf("Expected asset, got %q", rec.Body.String())
	}
	if rec := serve(h, "/library/remote"); !strings.Contains(rec.Body.String(), "app") {
		t.Errorf("Expected index.html fallback, got %q", rec.Body.String())
	}
	if rec := serve(h, "/"); !strings.Contains(rec.Body.String(), "app") {
		t.Errorf("Expected index.html at root, got %q", rec.Body.String())
	}
}
