package artwork

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Resolver looks up artwork with fallback and caches resized copies.
// Resolution order:
// 1. Resized copy in cacheDir/thumbs (size > 0 only)
// 2. MPD readpicture (embedded in audio file tags)
// 3. MPD albumart (folder-based)
type Resolver struct {
	provider Provider
	cacheDir string
}

// NewResolver creates a resolver. An empty cacheDir disables the disk cache.
func NewResolver(provider Provider, cacheDir string) *Resolver {
	return &Resolver{
		provider: provider,
		cacheDir: cacheDir,
	}
}

// Resolve returns artwork for uri, scaled to fit size when size > 0.
func (r *Resolver) Resolve(uri string, size int) (*Image, error) {
	size = ClampSize(size)

	thumbPath := r.thumbPath(uri, size)
	if thumbPath != "" {
		if data, err := os.ReadFile(thumbPath); err == nil {
			return &Image{Data: data, ContentType: "image/jpeg", Source: "cache"}, nil
		}
	}

	img, err := r.fetch(uri)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return img, nil
	}

	resized, err := Resize(img.Data, size)
	if err != nil {
		// Undecodable art is still served as is.
		log.Warn().Err(err).Str("uri", uri).Msg("Failed to resize artwork")
		return img, nil
	}

	if thumbPath != "" {
		r.save(thumbPath, resized)
	}
	return &Image{Data: resized, ContentType: "image/jpeg", Source: img.Source}, nil
}

func (r *Resolver) fetch(uri string) (*Image, error) {
	if data, err := r.provider.ReadPicture(uri); err == nil && len(data) > 0 {
		return &Image{Data: data, ContentType: ContentType(data), Source: "embedded"}, nil
	}

	data, err := r.provider.AlbumArt(uri)
	if err != nil || len(data) == 0 {
		log.Debug().Err(err).Str("uri", uri).Msg("Album art not found")
		return nil, fmt.Errorf("%w: %s", ErrNoArtwork, uri)
	}
	return &Image{Data: data, ContentType: ContentType(data), Source: "folder"}, nil
}

func (r *Resolver) thumbPath(uri string, size int) string {
	if r.cacheDir == "" || size == 0 {
		return ""
	}
	key := fmt.Sprintf("%x", md5.Sum([]byte(uri)))
	return filepath.Join(r.cacheDir, "thumbs", fmt.Sprintf("%s_%d.jpg", key, size))
}

func (r *Resolver) save(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Warn().Err(err).Msg("Failed to create thumbnail directory")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write thumbnail")
	}
}
