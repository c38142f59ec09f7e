package mpd

import (
	"context"
	"errors"
	"testing"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

// MockSongLister implements SongLister for testing.
type MockSongLister struct {
	Songs []map[string]string
	Error error
	Root  string
}

func (m *MockSongLister) ListAllInfo(uri string) ([]map[string]string, error) {
	m.Root = uri
	return m.Songs, m.Error
}

func TestCollectionFindFiltersByKind(t *testing.T) {
	lister := &MockSongLister{Songs: []map[string]string{
		{"file": "NAS/Bob/X/01 One.flac", "Title": "One", "Artist": "Bob", "Album": "X", "Track": "1/10", "duration": "215.300"},
		{"file": "NAS/Bob/X/02 Two.mp3", "AlbumArtist": "Bob", "Album": "X", "Time": "180"},
		{"file": "NAS/Films/Heat.mkv", "Title": "Heat"},
		{"file": "NAS/Bob/X/cover.jpg"},
		{"directory": "NAS/Bob"},
	}}
	c := NewCollection(lister, "NAS")

	audio, err := c.Find(context.Background(), media.KindAudio)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if lister.Root != "NAS" {
		t.Errorf("Expected listing below NAS, got %q", lister.Root)
	}
	if len(audio) != 2 {
		t.Fatalf("Expected 2 audio songs, got %d", len(audio))
	}

	one := media.Classify(audio[0])
	if one.Kind() != media.KindAudio || one.Title != "One" || one.TrackNumber != 1 || one.Duration != 215300 {
		t.Errorf("Unexpected first song: %+v", one)
	}
	if one.ContentURI != "NAS/Bob/X/01 One.flac" || one.MimeType != "audio/flac" {
		t.Errorf("Unexpected content fields: %q %q", one.ContentURI, one.MimeType)
	}
	if len(one.ThumbnailURIs) != 1 || one.ThumbnailURIs[0] != "/albumart?path=NAS%2FBob%2FX%2F01+One.flac" {
		t.Errorf("Unexpected thumbnail: %v", one.ThumbnailURIs)
	}

	two := media.Classify(audio[1])
	if two.Title != "02 Two" {
		t.Errorf("Expected filename title fallback, got %q", two.Title)
	}
	if media.ArtistName(two) != "Bob" || two.Duration != 180000 {
		t.Errorf("Expected album artist and Time fallbacks, got %q %d", media.ArtistName(two), two.Duration)
	}

	video, _ := c.Find(context.Background(), media.KindVideo)
	if len(video) != 1 || media.Classify(video[0]).Kind() != media.KindVideo {
		t.Errorf("Expected 1 video, got %d", len(video))
	}
}

func TestCollectionFindError(t *testing.T) {
	c := NewCollection(&MockSongLister{Error: errors.New("connection refused")}, "")
	if _, err := c.Find(context.Background(), media.KindAudio); err == nil {
		t.Error("Expected list error to propagate")
	}
}

func TestCollectionFindCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister := &MockSongLister{}
	if _, err := NewCollection(lister, "").Find(ctx, media.KindAudio); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
