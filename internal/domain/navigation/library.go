// Package navigation orchestrates the library views: which index is active,
// the breadcrumb shown above it, and the hand-off of selected media to the
// player and carousel.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/localindex"
	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/domain/remote"
	"github.com/edumarques81/stellar-media-library/internal/events"
)

// Mode is the active top-level library tab.
type Mode string

const (
	ModeLocal  Mode = "LOCAL"
	ModeRemote Mode = "REMOTE"
)

// Tab indexes as sent by clients.
const (
	TabLocal  = 0
	TabRemote = 1
)

const (
	localLabel  = "LOCAL"
	serverLabel = "SERVER"
	folderLabel = "FOLDER"
	emptyLabel  = "-"

	// AllLetters is the alphabet bookmark that clears the filter.
	AllLetters = "*"
)

var (
	// ErrNotInitialized is returned by operations called before Init.
	ErrNotInitialized = errors.New("library not initialized")

	// ErrNotInView is returned when a selection does not resolve against
	// the current view.
	ErrNotInView = errors.New("selection not in current view")
)

// Player receives content lists to play and reports index changes.
type Player interface {
	PlayContent(list []*media.Entity, index int, autoplay bool, kind media.Kind) error
	CurrentType() media.Kind
	Play(index int) error
	AddIndexChangeListener(fn func(int))
}

// Carousel positions the audio carousel and reports user swipes.
type Carousel interface {
	LoadMediaContent(list []*media.Entity, index int)
	SlideTo(index int)
	AddIndexChangeListener(fn func(int))
}

// Breadcrumb is the title pair shown above the current listing. The zero
// value means no sub-panel is shown.
type Breadcrumb struct {
	Title    string `json:"textTitle"`
	Subtitle string `json:"textSubtitle"`
}

// Deps are the collaborators of a Library.
type Deps struct {
	Index        *localindex.Service
	Remote       *remote.Browser
	Scanner      remote.Scanner
	Player       Player
	Carousel     Carousel
	Bus          *events.Bus
	ScanInterval time.Duration
}

// Library is the library context object. It is created once at startup,
// started with Init and stopped with Dispose.
type Library struct {
	deps  Deps
	local *localindex.Browser

	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	initialized bool
	mode        Mode
	visible     bool
	crumb       Breadcrumb
	scanning    bool

	wg sync.WaitGroup
}

// New creates a library over deps.
func New(deps Deps) *Library {
	if deps.ScanInterval <= 0 {
		deps.ScanInterval = remote.DefaultScanInterval
	}
	l := &Library{
		deps:  deps,
		local: localindex.NewBrowser(deps.Index),
		mode:  ModeLocal,
	}
	if deps.Remote != nil {
		deps.Remote.AddSourceLostListener(l.sourceLost)
	}
	return l
}

// sourceLost returns the remote view to the source list when the selected
// source expires.
func (l *Library) sourceLost(id string) {
	l.mu.RLock()
	active := l.initialized && l.mode == ModeRemote
	l.mu.RUnlock()
	if !active {
		return
	}
	log.Info().Str("source", id).Msg("Returning to media sources")
	l.setView(ModeRemote, Breadcrumb{})
}

// Init loads the local index, wires carousel and player index sync, and
// shows the local categories.
func (l *Library) Init(ctx context.Context) error {
	l.mu.Lock()
	if l.initialized {
		l.mu.Unlock()
		return nil
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.mu.Unlock()

	l.deps.Index.Load(l.ctx)

	if l.deps.Carousel != nil && l.deps.Player != nil {
		l.deps.Carousel.AddIndexChangeListener(func(index int) {
			if l.deps.Player.CurrentType() != media.KindAudio {
				return
			}
			if err := l.deps.Player.Play(index); err != nil {
				log.Error().Err(err).Int("index", index).Msg("Failed to play carousel selection")
			}
		})
		l.deps.Player.AddIndexChangeListener(func(index int) {
			if l.deps.Player.CurrentType() == media.KindAudio {
				l.deps.Carousel.SlideTo(index)
			}
		})
	}

	l.mu.Lock()
	l.initialized = true
	l.visible = true
	l.mu.Unlock()

	log.Info().Msg("Library initialized")
	l.ShowLocalContent()
	return nil
}

// Dispose stops the scan loop and any browse in flight.
func (l *Library) Dispose() {
	l.mu.Lock()
	if !l.initialized {
		l.mu.Unlock()
		return
	}
	l.initialized = false
	l.cancel()
	l.mu.Unlock()

	l.wg.Wait()
	l.mu.Lock()
	l.scanning = false
	l.mu.Unlock()

	l.deps.Remote.Reset()
	l.deps.Remote.Wait()
	log.Info().Msg("Library disposed")
}

func (l *Library) ready() (context.Context, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	return l.ctx, nil
}

func (l *Library) setView(mode Mode, crumb Breadcrumb) {
	l.mu.Lock()
	l.mode = mode
	l.crumb = crumb
	l.mu.Unlock()
	l.deps.Bus.Publish(events.EventViewChanged, events.Payload{"mode": string(mode)})
}

// RenderTab switches to the local (0) or remote (1) tab. Other indexes are
// ignored.
func (l *Library) RenderTab(index int) error {
	switch index {
	case TabLocal:
		return l.ShowLocalContent()
	case TabRemote:
		return l.ShowMediaSources()
	default:
		log.Warn().Int("tab", index).Msg("Unknown library tab")
		return nil
	}
}

// SetVisible records whether the library panel is on screen. Periodic
// scans only run while it is.
func (l *Library) SetVisible(visible bool) {
	l.mu.Lock()
	l.visible = visible
	l.mu.Unlock()
}

// Visible reports whether the library panel is on screen.
func (l *Library) Visible() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.visible
}

// Mode returns the active tab.
func (l *Library) Mode() Mode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mode
}

// Breadcrumb returns the current breadcrumb.
func (l *Library) Breadcrumb() Breadcrumb {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.crumb
}

// SetAlphabetFilter applies letter to both the local and the remote views.
// "*" clears the filter.
func (l *Library) SetAlphabetFilter(letter string) {
	if letter == AllLetters {
		letter = ""
	}
	l.local.SetFilter(letter)
	l.deps.Remote.SetFilter(letter)
	l.deps.Bus.Publish(events.EventViewChanged, events.Payload{"filter": letter})
}

// ShowLocalContent clears the local history and lists the categories.
func (l *Library) ShowLocalContent() error {
	if _, err := l.ready(); err != nil {
		return err
	}
	l.local.ShowRoot()
	l.setView(ModeLocal, Breadcrumb{})
	return nil
}

// SelectLocalContent drills into entry, pushing it onto the history.
func (l *Library) SelectLocalContent(entry localindex.Entry) error {
	if _, err := l.ready(); err != nil {
		return err
	}

	crumb := Breadcrumb{Title: localLabel, Subtitle: upperOr(entry.Title, emptyLabel)}
	if history := l.local.History(); len(history) > 0 {
		crumb.Title = strings.ToUpper(history[len(history)-1].Title)
	}
	if err := l.local.Open(entry); err != nil {
		log.Warn().Err(err).Str("title", entry.Title).Msg("Cannot open local content")
		return err
	}
	l.setView(ModeLocal, crumb)
	return nil
}

// GoBackLocal re-renders the previous local listing, or the categories when
// there is none.
func (l *Library) GoBackLocal() error {
	if _, err := l.ready(); err != nil {
		return err
	}
	if len(l.local.History()) > 1 {
		l.local.PopHistory()
		prev, _ := l.local.PopHistory()
		return l.SelectLocalContent(prev)
	}
	return l.ShowLocalContent()
}

// SelectLocal selects the entry at index of the filtered local listing.
func (l *Library) SelectLocal(index int) error {
	entries := l.local.Entries()
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: local index %d", ErrNotInView, index)
	}
	entry := entries[index]
	if entry.IsLeaf() {
		return l.SelectLocalMedia(entry.Item)
	}
	return l.SelectLocalContent(entry)
}

// SelectLocalMedia plays item within the same-kind items of the current
// local listing.
func (l *Library) SelectLocalMedia(item *media.Entity) error {
	if _, err := l.ready(); err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	return l.playLeaf(item, l.local.SameKind(item.Kind()))
}

// ShowMediaSources drops any remote selection, scans immediately and starts
// the periodic scan loop.
func (l *Library) ShowMediaSources() error {
	ctx, err := l.ready()
	if err != nil {
		return err
	}

	l.deps.Remote.Reset()
	l.setView(ModeRemote, Breadcrumb{})

	if err := l.deps.Remote.Scan(ctx, l.deps.Scanner); err != nil {
		log.Warn().Err(err).Msg("Media source scan failed")
	}
	l.startScanLoop(ctx)
	return nil
}

func (l *Library) startScanLoop(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scanning {
		return
	}
	l.scanning = true

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.deps.Remote.RunScanner(ctx, l.deps.Scanner, l.deps.ScanInterval, l.scanActive)
	}()
}

func (l *Library) scanActive() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.visible && l.mode == ModeRemote
}

// SelectRemoteSource opens the source with id at its root container.
func (l *Library) SelectRemoteSource(id string) error {
	ctx, err := l.ready()
	if err != nil {
		return err
	}
	if err := l.deps.Remote.SelectSource(ctx, id); err != nil {
		log.Warn().Err(err).Str("source", id).Msg("Cannot select media source")
		return err
	}
	l.setView(ModeRemote, l.remoteCrumb())
	return nil
}

// SelectRemoteContent descends into a container item or plays a leaf item
// within the same-kind items of the current container.
func (l *Library) SelectRemoteContent(item *media.Entity) error {
	ctx, err := l.ready()
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if item.IsContainer() {
		if _, err := l.deps.Remote.SelectContainerItem(ctx, item); err != nil {
			return err
		}
		l.setView(ModeRemote, l.remoteCrumb())
		return nil
	}
	return l.playLeaf(item, l.deps.Remote.SameKind(item.Kind()))
}

// SelectRemote selects the item at index of the filtered remote items.
func (l *Library) SelectRemote(index int) error {
	items := l.deps.Remote.Items()
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: remote index %d", ErrNotInView, index)
	}
	return l.SelectRemoteContent(items[index])
}

// SelectRemoteContainer jumps back to the container at index of the
// filtered container path.
func (l *Library) SelectRemoteContainer(index int) error {
	ctx, err := l.ready()
	if err != nil {
		return err
	}
	containers := l.deps.Remote.Containers()
	if index < 0 || index >= len(containers) {
		return fmt.Errorf("%w: container index %d", ErrNotInView, index)
	}
	if err := l.deps.Remote.SelectContainer(ctx, containers[index]); err != nil {
		return err
	}
	l.setView(ModeRemote, l.remoteCrumb())
	return nil
}

// GoBackRemote returns to the parent container, or to the source list from
// a source root.
func (l *Library) GoBackRemote() error {
	ctx, err := l.ready()
	if err != nil {
		return err
	}
	if l.deps.Remote.State() == remote.StateNoSourceSelected {
		return l.ShowMediaSources()
	}
	l.deps.Remote.GoBack(ctx)
	l.setView(ModeRemote, l.remoteCrumb())
	return nil
}

// remoteCrumb derives the breadcrumb from the current container path.
func (l *Library) remoteCrumb() Breadcrumb {
	src, ok := l.deps.Remote.Selected()
	if !ok {
		return Breadcrumb{}
	}
	path := l.deps.Remote.Path()
	depth := len(path)

	switch {
	case depth == 0:
		return Breadcrumb{Title: folderLabel, Subtitle: emptyLabel}
	case depth == 1:
		return Breadcrumb{Title: serverLabel, Subtitle: upperOr(src.FriendlyName, emptyLabel)}
	case depth == 2:
		return Breadcrumb{Title: strings.ToUpper(src.FriendlyName), Subtitle: upperOr(path[1].Title, emptyLabel)}
	default:
		return Breadcrumb{Title: strings.ToUpper(path[depth-2].Title), Subtitle: upperOr(path[depth-1].Title, emptyLabel)}
	}
}

// playLeaf hands list to the player starting at item. Audio also loads the
// carousel. The index is looked up in the exact list handed onward.
func (l *Library) playLeaf(item *media.Entity, list []*media.Entity) error {
	kind := item.Kind()
	if kind != media.KindAudio && kind != media.KindVideo {
		log.Warn().Str("kind", string(kind)).Str("title", item.Title).Msg("Media type not supported")
		return nil
	}

	index := media.IndexOf(list, item)
	if index < 0 {
		return fmt.Errorf("%w: %q", ErrNotInView, item.Title)
	}

	if kind == media.KindAudio && l.deps.Carousel != nil {
		l.deps.Carousel.LoadMediaContent(list, index)
	}
	if l.deps.Player == nil {
		return nil
	}
	if err := l.deps.Player.PlayContent(list, index, true, kind); err != nil {
		return fmt.Errorf("failed to play %q: %w", item.Title, err)
	}
	return nil
}

func upperOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.ToUpper(s)
}
