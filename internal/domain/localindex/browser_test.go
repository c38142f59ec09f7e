package localindex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

func newTestBrowser(t *testing.T) *Browser {
	t.Helper()
	source := &MockCollectionSource{Items: map[media.Kind][]media.Props{
		media.KindAudio: {
			track("Apple", "Bob", "X"),
			track("banana", "Bob", "X"),
			track("Ant", "Bob", "X"),
		},
	}}
	return NewBrowser(loadedService(t, source))
}

func TestBrowserDrillDown(t *testing.T) {
	b := newTestBrowser(t)
	b.ShowRoot()

	root := b.Entries()
	if len(root) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(root))
	}

	steps := []Entry{
		root[0],
		{Title: SubCategoryArtists, Operation: OpBrowseArtists, Kind: media.KindAudio},
		{Title: "Bob", Operation: OpBrowseArtist, Kind: media.KindAudio, Artist: "Bob"},
		{Title: "X", Operation: OpBrowseAlbum, Kind: media.KindAudio, Artist: "Bob", Album: "X"},
	}
	wantCounts := []int{3, 1, 1, 3}
	for i, step := range steps {
		if err := b.Open(step); err != nil {
			t.Fatalf("Open %q failed: %v", step.Title, err)
		}
		if got := len(b.Entries()); got != wantCounts[i] {
			t.Errorf("After %q: Expected %d entries, got %d", step.Title, wantCounts[i], got)
		}
	}

	if got := len(b.History()); got != 4 {
		t.Errorf("Expected history depth 4, got %d", got)
	}

	last, ok := b.PopHistory()
	if !ok || last.Title != "X" {
		t.Errorf("Expected to pop album X, got %+v", last)
	}

	b.ShowRoot()
	if len(b.History()) != 0 {
		t.Errorf("Expected ShowRoot to clear history")
	}
}

func TestBrowserAlphabetFilter(t *testing.T) {
	b := newTestBrowser(t)
	if err := b.Open(Entry{Title: SubCategoryAll, Operation: OpBrowseAll, Kind: media.KindAudio}); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	b.SetFilter("a")
	if got, want := entryTitles(b.Entries()), []string{"Ant", "Apple"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	same := b.SameKind(media.KindAudio)
	if len(same) != 2 || same[0].Title != "Ant" {
		t.Errorf("Expected filtered same-kind list, got %d items", len(same))
	}
	if len(b.SameKind(media.KindVideo)) != 0 {
		t.Errorf("Expected no video items")
	}

	b.SetFilter("")
	if got := len(b.Entries()); got != 3 {
		t.Errorf("Expected unfiltered listing of 3, got %d", got)
	}
}

func TestBrowserUnknownOperation(t *testing.T) {
	b := newTestBrowser(t)
	b.ShowRoot()

	err := b.Open(Entry{Title: "Odd", Operation: "browse_genre", Kind: media.KindAudio})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Expected ErrUnknownOperation, got %v", err)
	}
	if got := entryTitles(b.Entries()); !reflect.DeepEqual(got, []string{CategoryMusic, CategoryVideos}) {
		t.Errorf("Expected categories kept after unknown operation, got %v", got)
	}
	if len(b.History()) != 0 {
		t.Errorf("Expected history untouched, got %v", b.History())
	}

	err = b.Open(Entry{Title: "Odd", Operation: OpBrowseCategory, Kind: media.KindImage})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
	if len(b.History()) != 0 {
		t.Errorf("Expected history untouched after unknown kind")
	}
}

func TestPopEmptyHistory(t *testing.T) {
	b := newTestBrowser(t)
	if _, ok := b.PopHistory(); ok {
		t.Errorf("Expected empty history pop to fail")
	}
}
