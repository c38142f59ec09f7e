// Package media provides the normalized media entity model shared by the
// local index and the remote browser.
package media

import "encoding/json"

// Kind discriminates the media entity variants.
type Kind string

const (
	KindContainer Kind = "CONTAINER"
	KindAudio     Kind = "AUDIO"
	KindVideo     Kind = "VIDEO"
	KindImage     Kind = "IMAGE"
	KindOther     Kind = "OTHER"
)

// UnknownValue is the display value used for any missing text attribute.
const UnknownValue = "Unknown"

// Props is a raw property bag as delivered by a content source.
type Props map[string]any

// Entity is a normalized media object. The kind is fixed at construction;
// kind-specific fields are only meaningful for the kinds listed next to them.
type Entity struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ContentURI string `json:"contentURI,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`

	// AUDIO, VIDEO
	Artists       []string `json:"artists,omitempty"`
	Album         string   `json:"album,omitempty"`
	Duration      int64    `json:"duration,omitempty"` // milliseconds
	ThumbnailURIs []string `json:"thumbnailURIs,omitempty"`

	// AUDIO
	TrackNumber int `json:"trackNumber,omitempty"`

	// VIDEO, IMAGE
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	kind Kind
}

// NewContainer creates a container entity, used for synthetic roots.
func NewContainer(id, title string) *Entity {
	if title == "" {
		title = UnknownValue
	}
	return &Entity{ID: id, Title: title, kind: KindContainer}
}

// Kind returns the entity's kind.
func (e *Entity) Kind() Kind {
	return e.kind
}

// IsContainer reports whether the entity can be browsed into.
func (e *Entity) IsContainer() bool {
	return e.kind == KindContainer
}

// MarshalJSON includes the kind discriminant as "type".
func (e *Entity) MarshalJSON() ([]byte, error) {
	type alias Entity
	return json.Marshal(struct {
		*alias
		Type Kind `json:"type"`
	}{
		alias: (*alias)(e),
		Type:  e.kind,
	})
}
