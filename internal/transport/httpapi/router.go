// Package httpapi wires the HTTP endpoints next to the Socket.io handler.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/artwork"
	"github.com/edumarques81/stellar-media-library/internal/metrics"
	"github.com/edumarques81/stellar-media-library/internal/version"
)

// Pinger reports backend liveness.
type Pinger interface {
	Ping() error
}

// ArtResolver finds album art for a song path.
type ArtResolver interface {
	Resolve(uri string, size int) (*artwork.Image, error)
}

// Options configures the router.
type Options struct {
	Socket    http.Handler
	MPD       Pinger
	Artwork   ArtResolver
	StaticDir string
}

// NewRouter builds the HTTP handler. The Socket.io endpoint is mounted
// outside the instrumented group so long-polling and upgrades pass through
// untouched.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.Socket != nil {
		r.Handle("/socket.io/*", opts.Socket)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(metricsMiddleware)

		r.Get("/health", healthHandler(opts.MPD))
		r.Get("/api/v1/version", versionHandler)
		r.Get("/albumart", albumArtHandler(opts.Artwork))
		r.Handle("/metrics", promhttp.Handler())
	})

	if opts.StaticDir != "" {
		log.Info().Str("dir", opts.StaticDir).Msg("Serving static files")
		r.NotFound(spaHandler(opts.StaticDir))
	}

	return r
}

func healthHandler(mpd Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if mpd == nil {
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		if err := mpd.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","mpd":"disconnected"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","mpd":"connected"}`))
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.GetInfo())
}

func albumArtHandler(resolver ArtResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			http.Error(w, "path parameter required", http.StatusBadRequest)
			return
		}
		if resolver == nil {
			http.Error(w, "album art not available", http.StatusNotFound)
			return
		}

		size := 0
		if s := r.URL.Query().Get("size"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid size", http.StatusBadRequest)
				return
			}
			size = n
		}

		img, err := resolver.Resolve(path, size)
		if errors.Is(err, artwork.ErrNoArtwork) {
			http.Error(w, "album art not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Album art lookup failed")
			http.Error(w, "album art lookup failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Cache-Control", "public, max-age=86400") // Cache for 1 day
		w.Write(img.Data)
	}
}

// spaHandler serves files from dir, falling back to index.html for
// client-side routes.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/"))
		if clean != "/" {
			if _, err := os.Stat(filepath.Join(dir, clean)); err == nil {
				fs.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
