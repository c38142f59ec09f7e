package media

import "strings"

// Placeholder images served by the front end.
const (
	AudioPlaceholder     = "/images/audio-placeholder.jpg"
	VideoPlaceholder     = "/images/video-placeholder.jpg"
	ContainerPlaceholder = "/images/container-placeholder.jpg"
	DefaultPlaceholder   = "/images/default-placeholder.jpg"
)

// Placeholder returns the placeholder image for a kind.
func Placeholder(kind Kind) string {
	switch kind {
	case KindAudio:
		return AudioPlaceholder
	case KindVideo:
		return VideoPlaceholder
	case KindContainer:
		return ContainerPlaceholder
	default:
		return DefaultPlaceholder
	}
}

// ThumbnailPath returns the first thumbnail of e, falling back to the
// placeholder of e's kind, or of fallback when e is nil.
func ThumbnailPath(e *Entity, fallback Kind) string {
	if e != nil {
		if len(e.ThumbnailURIs) > 0 {
			return e.ThumbnailURIs[0]
		}
		return Placeholder(e.kind)
	}
	return Placeholder(fallback)
}

// ArtistName joins the entity's artists with ", ".
func ArtistName(e *Entity) string {
	if e == nil || len(e.Artists) == 0 {
		return UnknownValue
	}
	return strings.Join(e.Artists, ", ")
}

// AlbumName returns the entity's album or "Unknown".
func AlbumName(e *Entity) string {
	if e == nil || e.Album == "" {
		return UnknownValue
	}
	return e.Album
}
