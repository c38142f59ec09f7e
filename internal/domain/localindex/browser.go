package localindex

import (
	"fmt"
	"sync"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

// Browser is the local navigation state: the current listing, the history
// of opened entries and the alphabet filter applied to the listing.
type Browser struct {
	index *Service

	mu      sync.RWMutex
	entries []Entry
	history []Entry
	filter  string
}

// NewBrowser creates a browser over index.
func NewBrowser(index *Service) *Browser {
	return &Browser{index: index}
}

// ShowRoot clears the history and lists the categories.
func (b *Browser) ShowRoot() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = nil
	b.entries = Categories()
}

// Open pushes entry onto the history and replaces the listing with the
// entry's children. Unknown operations and kinds return an error and leave
// the listing and history untouched.
func (b *Browser) Open(entry Entry) error {
	var children []Entry
	switch entry.Operation {
	case OpBrowseCategory:
		subs, err := SubCategories(entry.Kind)
		if err != nil {
			return err
		}
		children = subs
	case OpBrowseArtists:
		children = b.index.Artists(entry.Kind)
	case OpBrowseArtist:
		children = b.index.AlbumsForArtist(entry.Artist, entry.Kind)
	case OpBrowseAlbum:
		children = b.index.AlbumContent(entry.Artist, entry.Album, entry.Kind)
	case OpBrowseAlbums:
		children = b.index.AllAlbums(entry.Kind)
	case OpBrowseAll:
		children = b.index.AllContent(entry.Kind)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, entry.Operation)
	}

	b.mu.Lock()
	b.entries = children
	b.history = append(b.history, entry)
	b.mu.Unlock()
	return nil
}

// PopHistory removes and returns the most recent history entry.
func (b *Browser) PopHistory() (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.history) == 0 {
		return Entry{}, false
	}
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	return last, true
}

// History returns a copy of the history stack, oldest first.
func (b *Browser) History() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, len(b.history))
	copy(out, b.history)
	return out
}

// SetFilter sets the alphabet prefix filter. Empty clears it.
func (b *Browser) SetFilter(prefix string) {
	b.mu.Lock()
	b.filter = prefix
	b.mu.Unlock()
}

// Filter returns the current alphabet prefix.
func (b *Browser) Filter() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// Entries returns the current listing with the alphabet filter applied.
func (b *Browser) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return media.FilterByPrefix(b.entries, b.filter, func(e Entry) string { return e.Title })
}

// SameKind returns the playable items of kind in the filtered listing, in
// listing order.
func (b *Browser) SameKind(kind media.Kind) []*media.Entity {
	entries := b.Entries()
	out := make([]*media.Entity, 0, len(entries))
	for _, e := range entries {
		if e.Item != nil && e.Item.Kind() == kind {
			out = append(out, e.Item)
		}
	}
	return out
}
