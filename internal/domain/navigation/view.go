package navigation

import (
	"github.com/edumarques81/stellar-media-library/internal/domain/localindex"
	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/domain/remote"
)

// View is a point-in-time snapshot of the active library listing.
type View struct {
	Mode       Mode       `json:"mode"`
	Breadcrumb Breadcrumb `json:"breadcrumb"`
	Filter     string     `json:"filter"`

	// Local mode
	Entries []localindex.Entry `json:"entries,omitempty"`

	// Remote mode
	State      string          `json:"state,omitempty"`
	Sources    []remote.Source `json:"sources,omitempty"`
	Containers []*media.Entity `json:"containers,omitempty"`
	Items      []*media.Entity `json:"items,omitempty"`
	Loading    bool            `json:"loading"`
}

// View returns the current listing for the active mode.
func (l *Library) View() View {
	v := View{
		Mode:       l.Mode(),
		Breadcrumb: l.Breadcrumb(),
	}

	if v.Mode == ModeLocal {
		v.Filter = l.local.Filter()
		v.Entries = l.local.Entries()
		return v
	}

	r := l.deps.Remote
	v.Filter = r.Filter()
	v.State = r.State().String()
	if r.State() == remote.StateNoSourceSelected {
		v.Sources = r.Sources()
		return v
	}
	v.Containers = r.Containers()
	v.Items = r.Items()
	v.Loading = r.Browsing()
	return v
}
