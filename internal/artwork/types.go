// Package artwork serves album art for the /albumart endpoint: MPD embedded
// pictures first, directory art second, optionally resized and cached on disk.
package artwork

import "errors"

// ErrNoArtwork is returned when no artwork is found.
var ErrNoArtwork = errors.New("no artwork found")

// Provider fetches raw artwork bytes for a song URI.
type Provider interface {
	// ReadPicture retrieves embedded artwork from audio file tags
	ReadPicture(uri string) ([]byte, error)
	// AlbumArt retrieves folder-based album art (cover.jpg, folder.jpg, etc.)
	AlbumArt(uri string) ([]byte, error)
}

// Image is artwork ready to be written to a response.
type Image struct {
	Data        []byte
	ContentType string
	Source      string // embedded, folder, cache
}

// ContentType detects the image type from magic bytes, defaulting to JPEG.
func ContentType(data []byte) string {
	if len(data) >= 8 {
		switch {
		case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
			return "image/png"
		case data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46:
			return "image/gif"
		case data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46:
			return "image/webp"
		}
	}
	return "image/jpeg"
}
