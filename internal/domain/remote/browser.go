// Package remote provides the browsing state machine for remote media
// servers: source discovery and expiry, the container stack, and paginated,
// cancelable container browsing.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/events"
	"github.com/edumarques81/stellar-media-library/internal/metrics"
)

// Browser tracks discovered sources and the browse position within the
// selected one.
//
// Every browse sequence runs in its own goroutine and is tagged with a
// token. Starting another browse replaces the token, so pages still
// arriving for the old sequence are dropped when they are applied.
type Browser struct {
	bus        *events.Bus
	now        func() time.Time
	staleAfter time.Duration

	mu       sync.Mutex
	sources  []*Source
	selected *Source
	stack    []*media.Entity
	items    []*media.Entity
	filter   string
	token    string
	inflight string
	cancel   context.CancelFunc
	onLost   []func(id string)

	wg sync.WaitGroup
}

// Option configures a Browser.
type Option func(*Browser)

// WithClock overrides the time source used to stamp sources.
func WithClock(now func() time.Time) Option {
	return func(b *Browser) { b.now = now }
}

// WithStaleAfter overrides the source expiry window.
func WithStaleAfter(d time.Duration) Option {
	return func(b *Browser) {
		if d > 0 {
			b.staleAfter = d
		}
	}
}

// NewBrowser creates a browser with no sources. bus may be nil.
func NewBrowser(bus *events.Bus, opts ...Option) *Browser {
	b := &Browser{
		bus:        bus,
		now:        time.Now,
		staleAfter: DefaultStaleAfter,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Discover adds or refreshes a source and stamps it as seen now. Sources
// without a friendly name are ignored.
func (b *Browser) Discover(src Source) {
	if strings.TrimSpace(src.FriendlyName) == "" {
		log.Debug().Str("source", src.ID).Msg("Ignoring media source without friendly name")
		return
	}
	src.LastSeenAt = b.now()

	b.mu.Lock()
	found, changed := false, false
	for _, existing := range b.sources {
		if existing.ID == src.ID {
			changed = existing.FriendlyName != src.FriendlyName || existing.IconURL != src.IconURL
			*existing = src
			found = true
			break
		}
	}
	if !found {
		added := src
		b.sources = append(b.sources, &added)
		log.Info().Str("source", src.ID).Str("name", src.FriendlyName).Msg("Media source discovered")
	}
	media.SortByTitle(b.sources, func(s *Source) string { return s.FriendlyName })
	count := len(b.sources)
	b.mu.Unlock()

	metrics.RemoteSources.Set(float64(count))
	if !found || changed {
		b.bus.Publish(events.EventSourcesChanged, events.Payload{"count": count})
	}
}

// EvictStale removes sources not seen within the expiry window before now
// and returns their ids. Losing the selected source resets the browser to
// no selection and publishes EventSourceLost once.
func (b *Browser) EvictStale(now time.Time) []string {
	b.mu.Lock()
	kept := make([]*Source, 0, len(b.sources))
	var evicted []string
	lost := ""
	for _, src := range b.sources {
		if now.Sub(src.LastSeenAt) <= b.staleAfter {
			kept = append(kept, src)
			continue
		}
		evicted = append(evicted, src.ID)
		if b.selected != nil && b.selected.ID == src.ID {
			lost = src.ID
			b.resetLocked()
		}
	}
	b.sources = kept
	count := len(kept)
	listeners := append([]func(string){}, b.onLost...)
	b.mu.Unlock()

	if len(evicted) == 0 {
		return nil
	}

	metrics.RemoteSources.Set(float64(count))
	metrics.SourcesEvictedTotal.Add(float64(len(evicted)))
	log.Info().Strs("sources", evicted).Msg("Media sources expired")
	b.bus.Publish(events.EventSourcesChanged, events.Payload{"count": count})

	if lost != "" {
		log.Warn().Str("source", lost).Msg("Selected media source lost")
		b.bus.Publish(events.EventSourceLost, events.Payload{"source": lost})
		for _, fn := range listeners {
			fn(lost)
		}
	}
	return evicted
}

// AddSourceLostListener registers fn to be called with the id of a selected
// source that EvictStale removed.
func (b *Browser) AddSourceLostListener(fn func(id string)) {
	b.mu.Lock()
	b.onLost = append(b.onLost, fn)
	b.mu.Unlock()
}

// Reset drops the selection, container stack and items, and supersedes any
// browse in flight.
func (b *Browser) Reset() {
	b.mu.Lock()
	b.resetLocked()
	b.mu.Unlock()

	b.bus.Publish(events.EventItemsChanged, events.Payload{"count": 0})
}

// SelectSource selects a known source, pushes its root container and starts
// browsing it.
func (b *Browser) SelectSource(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	src := b.findLocked(id)
	if src == nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	b.selectSourceLocked(ctx, src)
	return nil
}

// BrowseContainer (re)loads the items of container from the selected source.
// A browse of the same container that is still in flight is left alone.
func (b *Browser) BrowseContainer(ctx context.Context, container *media.Entity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selected == nil {
		return ErrNoSourceSelected
	}
	b.browseLocked(ctx, container)
	return nil
}

// SelectContainerItem descends into item when it is a container and reports
// whether it did. Other kinds are terminal selections for playback.
func (b *Browser) SelectContainerItem(ctx context.Context, item *media.Entity) (bool, error) {
	if item == nil || !item.IsContainer() {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selected == nil {
		return false, ErrNoSourceSelected
	}
	b.stack = append(b.stack, item)
	b.browseLocked(ctx, item)
	return true, nil
}

// SelectContainer jumps to a container already on the stack, dropping
// everything above it, and browses it again.
func (b *Browser) SelectContainer(ctx context.Context, container *media.Entity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selected == nil {
		return ErrNoSourceSelected
	}
	idx := media.IndexOf(b.stack, container)
	if idx < 0 {
		return ErrContainerNotInPath
	}
	b.stack = b.stack[:idx+1]
	b.browseLocked(ctx, container)
	return nil
}

// GoBack returns to the parent container. From the root it drops the
// selection entirely.
func (b *Browser) GoBack(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selected == nil {
		return
	}

	if len(b.stack) <= 1 {
		b.resetLocked()
		b.bus.Publish(events.EventItemsChanged, events.Payload{"count": 0})
		return
	}

	b.stack = b.stack[:len(b.stack)-1]
	parent := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	// The synthetic root cannot be browsed as an ordinary container.
	if strings.ToLower(strings.TrimSpace(parent.Title)) == rootTitle {
		b.selectSourceLocked(ctx, b.selected)
		return
	}
	b.stack = append(b.stack, parent)
	b.browseLocked(ctx, parent)
}

func (b *Browser) selectSourceLocked(ctx context.Context, src *Source) {
	b.resetLocked()
	b.selected = src

	root := media.NewContainer(src.Root.ID, src.Root.Title)
	b.stack = []*media.Entity{root}

	log.Info().Str("source", src.ID).Str("name", src.FriendlyName).Msg("Media source selected")
	b.browseLocked(ctx, root)
}

func (b *Browser) browseLocked(ctx context.Context, container *media.Entity) {
	key := "Browse_" + b.selected.ID + "_" + container.ID
	if key == b.inflight {
		log.Debug().Str("key", key).Msg("Browse already in flight")
		return
	}

	b.supersedeLocked()
	b.items = []*media.Entity{}

	server := b.selected.Server
	if server == nil {
		log.Error().Str("source", b.selected.ID).Msg("Media source has no browse endpoint")
		return
	}

	token := uuid.NewString()
	fetchCtx, cancel := context.WithCancel(ctx)
	b.token = token
	b.inflight = key
	b.cancel = cancel

	b.bus.Publish(events.EventItemsChanged, events.Payload{"count": 0, "container": container.ID})

	b.wg.Add(1)
	go b.fetch(fetchCtx, server, b.selected.ID, container, token)
}

// fetch requests pages strictly in order until a short page arrives, the
// token is superseded, or a request fails.
func (b *Browser) fetch(ctx context.Context, server Server, sourceID string, container *media.Entity, token string) {
	defer b.wg.Done()

	offset := 0
	for {
		started := time.Now()
		raw, err := server.Browse(ctx, container.ID, SortSpec, PageSize, offset)
		metrics.BrowsePageDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			b.abandon(token, sourceID, container, offset, err)
			return
		}

		last := len(raw) != PageSize
		if !b.applyPage(token, container, raw, last) {
			return
		}
		if last {
			return
		}
		offset += PageSize
	}
}

func (b *Browser) applyPage(token string, container *media.Entity, raw []media.Props, last bool) bool {
	page := make([]*media.Entity, 0, len(raw))
	for _, props := range raw {
		page = append(page, media.Classify(props))
	}

	b.mu.Lock()
	if b.token != token {
		b.mu.Unlock()
		metrics.BrowsePagesTotal.WithLabelValues("stale").Inc()
		log.Debug().Str("container", container.ID).Msg("Discarding stale browse page")
		return false
	}
	b.items = append(b.items, page...)
	count := len(b.items)
	if last {
		b.finishLocked()
	}
	b.mu.Unlock()

	metrics.BrowsePagesTotal.WithLabelValues("applied").Inc()
	log.Debug().
		Str("container", container.ID).
		Int("page", len(page)).
		Int("total", count).
		Msg("Browse page applied")

	b.bus.Publish(events.EventItemsChanged, events.Payload{"count": count, "container": container.ID})
	if last {
		b.bus.Publish(events.EventBrowseComplete, events.Payload{"count": count, "container": container.ID})
	}
	return true
}

// abandon ends a failed sequence. Items fetched so far stay visible; the
// in-flight key is released so the next browse of the container starts over.
func (b *Browser) abandon(token, sourceID string, container *media.Entity, offset int, err error) {
	b.mu.Lock()
	current := b.token == token
	if current {
		b.finishLocked()
	}
	b.mu.Unlock()

	if !current && errors.Is(err, context.Canceled) {
		log.Debug().Str("container", container.ID).Msg("Superseded browse canceled")
		return
	}

	metrics.BrowseErrorsTotal.Inc()
	log.Error().
		Err(err).
		Str("source", sourceID).
		Str("container", container.ID).
		Str("title", container.Title).
		Int("offset", offset).
		Msg("Error browsing container")

	if current {
		b.bus.Publish(events.EventBrowseFailed, events.Payload{
			"container": container.ID,
			"error":     err.Error(),
		})
	}
}

func (b *Browser) finishLocked() {
	b.inflight = ""
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Browser) supersedeLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.token = ""
	b.inflight = ""
}

func (b *Browser) resetLocked() {
	b.supersedeLocked()
	b.selected = nil
	b.stack = nil
	b.items = nil
}

func (b *Browser) findLocked(id string) *Source {
	for _, src := range b.sources {
		if src.ID == id {
			return src
		}
	}
	return nil
}

// Wait blocks until every browse goroutine started so far has returned.
func (b *Browser) Wait() {
	b.wg.Wait()
}

// State returns NO_SOURCE_SELECTED or BROWSING.
func (b *Browser) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return StateNoSourceSelected
	}
	return StateBrowsing
}

// Depth returns the container stack depth.
func (b *Browser) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stack)
}

// Selected returns a copy of the selected source.
func (b *Browser) Selected() (Source, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return Source{}, false
	}
	return *b.selected, true
}

// Source returns a copy of the source with id.
func (b *Browser) Source(id string) (Source, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if src := b.findLocked(id); src != nil {
		return *src, true
	}
	return Source{}, false
}

// Browsing reports whether a browse sequence is in flight.
func (b *Browser) Browsing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight != ""
}

// SetFilter sets the alphabet prefix applied to all views.
func (b *Browser) SetFilter(prefix string) {
	b.mu.Lock()
	b.filter = prefix
	b.mu.Unlock()
}

// Filter returns the alphabet prefix.
func (b *Browser) Filter() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Sources returns the filtered source list sorted by friendly name.
func (b *Browser) Sources() []Source {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := media.FilterByPrefix(b.sources, b.filter, func(s *Source) string { return s.FriendlyName })
	out := make([]Source, len(filtered))
	for i, src := range filtered {
		out[i] = *src
	}
	return out
}

// Path returns the unfiltered container stack, root first.
func (b *Browser) Path() []*media.Entity {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*media.Entity, len(b.stack))
	copy(out, b.stack)
	return out
}

// Containers returns the filtered container stack.
func (b *Browser) Containers() []*media.Entity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return media.FilterByPrefix(b.stack, b.filter, entityTitle)
}

// Items returns the filtered items of the current container.
func (b *Browser) Items() []*media.Entity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return media.FilterByPrefix(b.items, b.filter, entityTitle)
}

// SameKind returns the filtered items of kind.
func (b *Browser) SameKind(kind media.Kind) []*media.Entity {
	return media.FilterKind(b.Items(), kind)
}

// AudioItems returns the filtered audio items of the current container.
func (b *Browser) AudioItems() []*media.Entity {
	return b.SameKind(media.KindAudio)
}

// VideoItems returns the filtered video items of the current container.
func (b *Browser) VideoItems() []*media.Entity {
	return b.SameKind(media.KindVideo)
}

func entityTitle(e *media.Entity) string {
	return e.Title
}
