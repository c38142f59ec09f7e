// Package localindex provides the in-memory faceted index over locally
// available audio and video content.
package localindex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/events"
	"github.com/edumarques81/stellar-media-library/internal/metrics"
)

// Service holds the local audio and video snapshots and answers grouping
// queries over them. Snapshots are replaced wholesale by Load and never
// mutated afterwards.
type Service struct {
	source CollectionSource
	bus    *events.Bus

	mu    sync.RWMutex
	audio []*media.Entity
	video []*media.Entity
}

// NewService creates a new local index service. bus may be nil.
func NewService(source CollectionSource, bus *events.Bus) *Service {
	return &Service{
		source: source,
		bus:    bus,
	}
}

// Load queries the collection source for audio and video content. A failed
// query is logged and leaves an empty snapshot for that kind.
func (s *Service) Load(ctx context.Context) {
	audio := s.find(ctx, media.KindAudio)
	video := s.find(ctx, media.KindVideo)

	s.mu.Lock()
	s.audio = audio
	s.video = video
	s.mu.Unlock()

	metrics.LocalSnapshotItems.WithLabelValues(string(media.KindAudio)).Set(float64(len(audio)))
	metrics.LocalSnapshotItems.WithLabelValues(string(media.KindVideo)).Set(float64(len(video)))

	log.Info().
		Int("audio", len(audio)).
		Int("video", len(video)).
		Msg("Local content loaded")

	s.bus.Publish(events.EventLocalLoaded, events.Payload{
		"audio": len(audio),
		"video": len(video),
	})
}

func (s *Service) find(ctx context.Context, kind media.Kind) []*media.Entity {
	if s.source == nil {
		return []*media.Entity{}
	}

	raw, err := s.source.Find(ctx, kind)
	if err != nil {
		metrics.LocalQueryErrorsTotal.WithLabelValues(string(kind)).Inc()
		log.Error().Err(err).Str("kind", string(kind)).Msg("Local content query failed")
		return []*media.Entity{}
	}

	items := make([]*media.Entity, 0, len(raw))
	for _, props := range raw {
		e := media.Classify(props)
		if e.Kind() != kind {
			log.Debug().
				Str("id", e.ID).
				Str("expected", string(kind)).
				Str("got", string(e.Kind())).
				Msg("Skipping local item of unexpected kind")
			continue
		}
		items = append(items, e)
	}
	media.SortEntities(items)
	return items
}

// Snapshot returns a copy of the loaded items of kind. The entity pointers
// are shared so identity comparisons hold across listings.
func (s *Service) Snapshot(kind media.Kind) []*media.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var src []*media.Entity
	switch kind {
	case media.KindAudio:
		src = s.audio
	case media.KindVideo:
		src = s.video
	default:
		return nil
	}
	out := make([]*media.Entity, len(src))
	copy(out, src)
	return out
}

// Categories returns the static root listing.
func Categories() []Entry {
	return []Entry{
		{Title: CategoryMusic, Operation: OpBrowseCategory, Kind: media.KindAudio},
		{Title: CategoryVideos, Operation: OpBrowseCategory, Kind: media.KindVideo},
	}
}

// SubCategories returns the grouping choices for a content kind.
func SubCategories(kind media.Kind) ([]Entry, error) {
	if !isLocalKind(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	names := []string{SubCategoryArtists, SubCategoryAlbums, SubCategoryAll}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{
			Title:     name,
			Operation: Operation("browse_" + strings.ToLower(name)),
			Kind:      kind,
		})
	}
	return entries, nil
}

// Artists returns one entry per distinct artist name, sorted by title, with
// album and track (or movie) counts in the subtitle.
func (s *Service) Artists(kind media.Kind) []Entry {
	items := s.Snapshot(kind)

	type artistStats struct {
		albums map[string]struct{}
		items  int
	}
	order := make([]string, 0)
	stats := make(map[string]*artistStats)
	for _, e := range items {
		name := media.ArtistName(e)
		st, ok := stats[name]
		if !ok {
			st = &artistStats{albums: make(map[string]struct{})}
			stats[name] = st
			order = append(order, name)
		}
		st.albums[media.AlbumName(e)] = struct{}{}
		st.items++
	}

	entries := make([]Entry, 0, len(order))
	for _, name := range order {
		st := stats[name]
		entries = append(entries, Entry{
			Title:     name,
			Subtitle:  artistSubtitle(len(st.albums), st.items, kind),
			Operation: OpBrowseArtist,
			Kind:      kind,
			Artist:    name,
		})
	}
	sortEntries(entries)
	return entries
}

// AlbumsForArtist returns the distinct albums of one artist.
func (s *Service) AlbumsForArtist(artist string, kind media.Kind) []Entry {
	if artist == "" {
		return []Entry{}
	}
	items := s.Snapshot(kind)

	seen := make(map[string]struct{})
	entries := make([]Entry, 0)
	for _, e := range items {
		if media.ArtistName(e) != artist {
			continue
		}
		album := media.AlbumName(e)
		if _, ok := seen[album]; ok {
			continue
		}
		seen[album] = struct{}{}
		entries = append(entries, s.albumEntry(items, artist, album, kind))
	}
	sortEntries(entries)
	return entries
}

// AlbumContent returns the items of one artist's album as leaf entries.
func (s *Service) AlbumContent(artist, album string, kind media.Kind) []Entry {
	content := albumItems(s.Snapshot(kind), artist, album)
	return leafEntries(content, kind)
}

// AllAlbums returns one entry per distinct (artist, album) pair.
func (s *Service) AllAlbums(kind media.Kind) []Entry {
	items := s.Snapshot(kind)

	type albumKey struct{ artist, album string }
	seen := make(map[albumKey]struct{})
	entries := make([]Entry, 0)
	for _, e := range items {
		key := albumKey{media.ArtistName(e), media.AlbumName(e)}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, s.albumEntry(items, key.artist, key.album, kind))
	}
	sortEntries(entries)
	return entries
}

// AllContent returns every item of kind as leaf entries.
func (s *Service) AllContent(kind media.Kind) []Entry {
	return leafEntries(s.Snapshot(kind), kind)
}

// AlbumThumbnail returns the first thumbnail found among the album's items,
// or the placeholder for kind.
func (s *Service) AlbumThumbnail(artist, album string, kind media.Kind) string {
	return albumThumbnail(albumItems(s.Snapshot(kind), artist, album), kind)
}

func (s *Service) albumEntry(items []*media.Entity, artist, album string, kind media.Kind) Entry {
	return Entry{
		Title:     album,
		Subtitle:  artist,
		Operation: OpBrowseAlbum,
		Kind:      kind,
		Artist:    artist,
		Album:     album,
		Thumbnail: albumThumbnail(albumItems(items, artist, album), kind),
	}
}

func albumItems(items []*media.Entity, artist, album string) []*media.Entity {
	out := make([]*media.Entity, 0)
	for _, e := range items {
		if media.ArtistName(e) == artist && media.AlbumName(e) == album {
			out = append(out, e)
		}
	}
	return out
}

func albumThumbnail(content []*media.Entity, kind media.Kind) string {
	for _, e := range content {
		if len(e.ThumbnailURIs) > 0 {
			return e.ThumbnailURIs[0]
		}
	}
	return media.Placeholder(kind)
}

func leafEntries(items []*media.Entity, kind media.Kind) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, e := range items {
		entries = append(entries, Entry{
			Title:     e.Title,
			Subtitle:  media.ArtistName(e),
			Kind:      e.Kind(),
			Artist:    media.ArtistName(e),
			Album:     media.AlbumName(e),
			Thumbnail: media.ThumbnailPath(e, kind),
			Item:      e,
		})
	}
	sortEntries(entries)
	return entries
}

func artistSubtitle(albums, items int, kind media.Kind) string {
	albumWord := "ALBUMS"
	if albums == 1 {
		albumWord = "ALBUM"
	}
	itemWord := "TRACKS"
	switch {
	case kind == media.KindAudio && items == 1:
		itemWord = "TRACK"
	case kind == media.KindVideo && items == 1:
		itemWord = "MOVIE"
	case kind == media.KindVideo:
		itemWord = "MOVIES"
	}
	return fmt.Sprintf("%d %s, %d %s", albums, albumWord, items, itemWord)
}

func sortEntries(entries []Entry) {
	media.SortByTitle(entries, func(e Entry) string { return e.Title })
}

func isLocalKind(kind media.Kind) bool {
	return kind == media.KindAudio || kind == media.KindVideo
}
