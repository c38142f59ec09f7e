package localindex

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/events"
)

// MockCollectionSource implements CollectionSource for testing.
type MockCollectionSource struct {
	Items map[media.Kind][]media.Props
	Error map[media.Kind]error
	Calls []media.Kind
}

func (m *MockCollectionSource) Find(ctx context.Context, kind media.Kind) ([]media.Props, error) {
	m.Calls = append(m.Calls, kind)
	if err := m.Error[kind]; err != nil {
		return nil, err
	}
	return m.Items[kind], nil
}

func track(title, artist, album string, extra ...string) media.Props {
	p := media.Props{"type": "AUDIO", "id": title, "title": title, "Artist": artist, "Album": album}
	if len(extra) > 0 {
		p["AlbumArtURL"] = extra[0]
	}
	return p
}

func movie(title, artist, album string) media.Props {
	return media.Props{"type": "VIDEO", "id": title, "title": title, "Artist": artist, "Album": album}
}

func loadedService(t *testing.T, source *MockCollectionSource) *Service {
	t.Helper()
	svc := NewService(source, nil)
	svc.Load(context.Background())
	return svc
}

func entryTitles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestArtistsEndToEnd(t *testing.T) {
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindAudio: {
			track("One", "Bob", "X"),
			track("Two", "Bob", "X"),
			track("Three", "Ann", "Y"),
		},
	}}
	svc := loadedService(t, source)

	artists := svc.Artists(media.KindAudio)
	if got, want := entryTitles(artists), []string{"Ann", "Bob"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if artists[0].Subtitle != "1 ALBUM, 1 TRACK" {
		t.Errorf("Expected Ann subtitle '1 ALBUM, 1 TRACK', got %q", artists[0].Subtitle)
	}
	if artists[1].Subtitle != "1 ALBUM, 2 TRACKS" {
		t.Errorf("Expected Bob subtitle '1 ALBUM, 2 TRACKS', got %q", artists[1].Subtitle)
	}
	if artists[0].Operation != OpBrowseArtist || artists[0].Artist != "Ann" {
		t.Errorf("Unexpected artist entry: %+v", artists[0])
	}
}

func TestArtistCountsMatchSnapshot(t *testing.T) {
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindVideo: {
			movie("Alien", "Scott", "Classics"),
			movie("Blade Runner", "Scott", "Classics"),
			movie("Gladiator", "Scott", "Epics"),
			movie("Heat", "Mann", "Crime"),
		},
	}}
	svc := loadedService(t, source)

	artists := svc.Artists(media.KindVideo)
	subtitles := map[string]string{}
	for _, a := range artists {
		subtitles[a.Title] = a.Subtitle
	}
	if subtitles["Scott"] != "2 ALBUMS, 3 MOVIES" {
		t.Errorf("Expected Scott '2 ALBUMS, 3 MOVIES', got %q", subtitles["Scott"])
	}
	if subtitles["Mann"] != "1 ALBUM, 1 MOVIE" {
		t.Errorf("Expected Mann '1 ALBUM, 1 MOVIE', got %q", subtitles["Mann"])
	}
	if len(svc.Artists(media.KindAudio)) != 0 {
		t.Errorf("Expected no audio artists")
	}
}

func TestMultipleArtistsAreJoined(t *testing.T) {
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindAudio: {
			{"type": "AUDIO", "title": "Duet", "Artist": []string{"Ann", "Bob"}, "Album": "Z"},
		},
	}}
	svc := loadedService(t, source)

	artists := svc.Artists(media.KindAudio)
	if len(artists) != 1 || artists[0].Title != "Ann, Bob" {
		t.Errorf("Expected joined artist name, got %v", entryTitles(artists))
	}
	if albums := svc.AlbumsForArtist("Ann, Bob", media.KindAudio); len(albums) != 1 {
		t.Errorf("Expected 1 album for joined name, got %d", len(albums))
	}
}

func TestAlbumsAndContent(t *testing.T) {
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindAudio: {
			track("b-side", "Bob", "X"),
			track("A-side", "Bob", "X", "/art/x.jpg"),
			track("Solo", "Bob", "W"),
			track("Other", "Ann", "X"),
		},
	}}
	svc := loadedService(t, source)

	albums := svc.AlbumsForArtist("Bob", media.KindAudio)
	if got, want := entryTitles(albums), []string{"W", "X"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if albums[1].Subtitle != "Bob" || albums[1].Operation != OpBrowseAlbum {
		t.Errorf("Unexpected album entry: %+v", albums[1])
	}
	if albums[1].Thumbnail != "/art/x.jpg" {
		t.Errorf("Expected first thumbnail in album, got %q", albums[1].Thumbnail)
	}
	if albums[0].Thumbnail != media.AudioPlaceholder {
		t.Errorf("Expected placeholder for album without art, got %q", albums[0].Thumbnail)
	}

	content := svc.AlbumContent("Bob", "X", media.KindAudio)
	if got, want := entryTitles(content), []string{"A-side", "b-side"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	for _, e := range content {
		if !e.IsLeaf() {
			t.Errorf("Expected leaf entries in album content")
		}
	}

	all := svc.AllAlbums(media.KindAudio)
	if got, want := entryTitles(all), []string{"W", "X", "X"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected distinct artist/album pairs %v, got %v", want, got)
	}

	if got := len(svc.AllContent(media.KindAudio)); got != 4 {
		t.Errorf("Expected 4 items, got %d", got)
	}
	if svc.AlbumThumbnail("Ann", "X", media.KindAudio) != media.AudioPlaceholder {
		t.Errorf("Expected placeholder thumbnail")
	}
}

func TestLoadErrorYieldsEmptySnapshot(t *testing.T) {
	source := &MockCollectionSource{
		Items: map[media.Kind][]media.Props{
			media.KindVideo: {movie("Heat", "Mann", "Crime")},
		},
		Error: map[media.Kind]error{media.KindAudio: errors.New("index unavailable")},
	}
	bus := events.NewBus()
	sub := bus.Subscribe(events.EventLocalLoaded)
	svc := NewService(source, bus)
	svc.Load(context.Background())

	if len(svc.Snapshot(media.KindAudio)) != 0 {
		t.Errorf("Expected empty audio snapshot on error")
	}
	if len(svc.Snapshot(media.KindVideo)) != 1 {
		t.Errorf("Expected video snapshot to load independently")
	}
	if !reflect.DeepEqual(source.Calls, []media.Kind{media.KindAudio, media.KindVideo}) {
		t.Errorf("Expected one query per kind, got %v", source.Calls)
	}

	p := <-sub
	if p["audio"] != 0 || p["video"] != 1 {
		t.Errorf("Unexpected loaded payload: %v", p)
	}
}

func TestLoadSkipsMismatchedKinds(t *testing.T) {
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindAudio: {track("Ok", "A", "B"), movie("Wrong", "A", "B")},
	}}
	svc := loadedService(t, source)

	if got := len(svc.Snapshot(media.KindAudio)); got != 1 {
		t.Errorf("Expected 1 audio item, got %d", got)
	}
}

func TestSnapshotIsSorted(t *testing.T) {
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindAudio: {track("charlie", "A", "B"), track("Alpha", "A", "B"), track("", "A", "B")},
	}}
	svc := loadedService(t, source)

	got := make([]string, 0)
	for _, e := range svc.Snapshot(media.KindAudio) {
		got = append(got, e.Title)
	}
	if want := []string{"Alpha", "charlie", "Unknown"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSubCategories(t *testing.T) {
	subs, err := SubCategories(media.KindVideo)
	if err != nil {
		t.Fatalf("SubCategories failed: %v", err)
	}
	want := []Operation{OpBrowseArtists, OpBrowseAlbums, OpBrowseAll}
	for i, s := range subs {
		if s.Operation != want[i] || s.Kind != media.KindVideo {
			t.Errorf("Unexpected sub-category %d: %+v", i, s)
		}
	}

	if _, err := SubCategories(media.KindImage); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}

	cats := Categories()
	if len(cats) != 2 || cats[0].Title != CategoryMusic || cats[1].Kind != media.KindVideo {
		t.Errorf("Unexpected categories: %+v", cats)
	}
}
