package remote

import (
	"context"
	"errors"
	"time"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

const (
	// PageSize is the number of items requested per browse call.
	PageSize = 100

	// SortSpec is the sort criteria passed to every browse call.
	SortSpec = "+DisplayName"

	// DefaultStaleAfter is how long a source may go unseen before eviction.
	DefaultStaleAfter = 10 * time.Second

	// DefaultScanInterval is the network scan period while the remote view
	// is visible.
	DefaultScanInterval = 5 * time.Second

	rootTitle = "root"
)

var (
	// ErrSourceNotFound is returned when selecting an unknown source id.
	ErrSourceNotFound = errors.New("media source not found")

	// ErrNoSourceSelected is returned by operations that need a selection.
	ErrNoSourceSelected = errors.New("no media source selected")

	// ErrContainerNotInPath is returned when jumping to a container that is
	// not on the current container stack.
	ErrContainerNotInPath = errors.New("container not in current path")
)

// State is the browser's coarse state.
type State int

const (
	StateNoSourceSelected State = iota
	StateBrowsing
)

func (s State) String() string {
	if s == StateBrowsing {
		return "BROWSING"
	}
	return "NO_SOURCE_SELECTED"
}

// Server browses one remote media server's content tree.
type Server interface {
	Browse(ctx context.Context, containerID, sortSpec string, limit, offset int) ([]media.Props, error)
}

// RootDescriptor describes the root container of a source.
type RootDescriptor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Source is a discovered remote media server.
type Source struct {
	ID           string         `json:"id"`
	FriendlyName string         `json:"friendlyName"`
	IconURL      string         `json:"iconURL,omitempty"`
	Root         RootDescriptor `json:"root"`
	LastSeenAt   time.Time      `json:"lastSeenAt"`

	Server Server `json:"-"`
}

// Scanner discovers media servers on demand, calling found once per server
// seen during the scan.
type Scanner interface {
	ScanNetwork(ctx context.Context, found func(Source)) error
}
