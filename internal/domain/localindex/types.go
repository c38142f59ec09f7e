package localindex

import (
	"context"
	"errors"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

// Operation identifies what opening an entry does.
type Operation string

const (
	OpBrowseCategory Operation = "browse_category"
	OpBrowseArtists  Operation = "browse_artists"
	OpBrowseAlbums   Operation = "browse_albums"
	OpBrowseAll      Operation = "browse_all"
	OpBrowseArtist   Operation = "browse_artist"
	OpBrowseAlbum    Operation = "browse_album"
)

// Category titles.
const (
	CategoryMusic  = "MUSIC"
	CategoryVideos = "VIDEOS"

	SubCategoryArtists = "ARTISTS"
	SubCategoryAlbums  = "ALBUMS"
	SubCategoryAll     = "ALL"
)

var (
	// ErrUnknownOperation is returned when an entry carries an operation the
	// index does not handle.
	ErrUnknownOperation = errors.New("unknown local operation")

	// ErrUnknownKind is returned for kinds other than AUDIO and VIDEO.
	ErrUnknownKind = errors.New("unknown local content kind")
)

// Entry is one row of a local listing. Group entries (categories, artists,
// albums) carry an Operation; leaf entries carry the media Item instead.
type Entry struct {
	Title     string        `json:"title"`
	Subtitle  string        `json:"subtitle"`
	Operation Operation     `json:"operation,omitempty"`
	Kind      media.Kind    `json:"type"`
	Artist    string        `json:"artist,omitempty"`
	Album     string        `json:"album,omitempty"`
	Thumbnail string        `json:"thumbnail,omitempty"`
	Item      *media.Entity `json:"item,omitempty"`
}

// IsLeaf reports whether the entry is a playable media item.
func (e Entry) IsLeaf() bool {
	return e.Item != nil
}

// CollectionSource is the local content store queried once per kind at
// startup. Find returns every item whose type exactly matches kind.
type CollectionSource interface {
	Find(ctx context.Context, kind media.Kind) ([]media.Props, error)
}
