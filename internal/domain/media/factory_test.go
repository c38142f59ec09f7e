package media

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClassifyType(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"container", KindContainer},
		{"container.storageFolder", KindContainer},
		{"Album.MusicAlbum", KindContainer},
		{"person.musicArtist", KindContainer},
		{"GENRE", KindContainer},
		{"video", KindVideo},
		{"videoItem.movie", KindVideo},
		{"audio", KindAudio},
		{"AUDIO", KindAudio},
		{"music", KindAudio},
		{"musicTrack", KindAudio},
		{"image", KindImage},
		{"imageItem.photo", KindImage},
		{"picture", KindImage},
		{"playlist", KindOther},
		{"", KindOther},
		{"  audio", KindAudio},
		{"xaudio", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := ClassifyType(tt.tag); got != tt.want {
				t.Errorf("Expected %s for %q, got %s", tt.want, tt.tag, got)
			}
		})
	}
}

func TestClassifyAudioAliases(t *testing.T) {
	e := Classify(Props{
		"type":        "AUDIO",
		"id":          "local-1",
		"title":       "Blue in Green",
		"author":      "Miles Davis",
		"collection":  "Kind of Blue",
		"duration":    337.5,
		"trackNumber": 3,
		"sourceUri":   "file:///music/blue.flac",
		"mimeType":    "audio/flac",
	})

	if e.Kind() != KindAudio {
		t.Fatalf("Expected AUDIO, got %s", e.Kind())
	}
	if e.ID != "local-1" {
		t.Errorf("Expected id local-1, got %q", e.ID)
	}
	if e.Title != "Blue in Green" {
		t.Errorf("Expected title, got %q", e.Title)
	}
	if len(e.Artists) != 1 || e.Artists[0] != "Miles Davis" {
		t.Errorf("Expected artist from author alias, got %v", e.Artists)
	}
	if e.Album != "Kind of Blue" {
		t.Errorf("Expected album from collection alias, got %q", e.Album)
	}
	if e.Duration != 337500 {
		t.Errorf("Expected 337500ms, got %d", e.Duration)
	}
	if e.TrackNumber != 3 {
		t.Errorf("Expected track 3, got %d", e.TrackNumber)
	}
	if e.ContentURI != "file:///music/blue.flac" {
		t.Errorf("Expected content URI, got %q", e.ContentURI)
	}
}

func TestClassifyRemoteShape(t *testing.T) {
	e := Classify(Props{
		"type":        "music.track",
		"Path":        "/org/upnp/1$4$7",
		"DisplayName": "So What",
		"Artist":      "Miles Davis",
		"Album":       "Kind of Blue",
		"duration":    "0:09:22.000",
		"URLs":        []any{"http://nas:8200/MediaItems/7.flac", "http://nas:8200/alt"},
		"AlbumArtURL": "http://nas:8200/AlbumArt/7.jpg",
	})

	if e.Kind() != KindAudio {
		t.Fatalf("Expected AUDIO, got %s", e.Kind())
	}
	if e.ID != "/org/upnp/1$4$7" {
		t.Errorf("Expected Path as id, got %q", e.ID)
	}
	if e.Title != "So What" {
		t.Errorf("Expected DisplayName as title, got %q", e.Title)
	}
	if e.Duration != 562000 {
		t.Errorf("Expected 562000ms, got %d", e.Duration)
	}
	if e.ContentURI != "http://nas:8200/MediaItems/7.flac" {
		t.Errorf("Expected first URL, got %q", e.ContentURI)
	}
	if len(e.ThumbnailURIs) != 1 || e.ThumbnailURIs[0] != "http://nas:8200/AlbumArt/7.jpg" {
		t.Errorf("Expected album art thumbnail, got %v", e.ThumbnailURIs)
	}
}

func TestClassifyDefaults(t *testing.T) {
	e := Classify(Props{"type": "audio"})

	if e.Title != UnknownValue {
		t.Errorf("Expected Unknown title, got %q", e.Title)
	}
	if len(e.Artists) != 1 || e.Artists[0] != UnknownValue {
		t.Errorf("Expected [Unknown] artists, got %v", e.Artists)
	}
	if e.Album != UnknownValue {
		t.Errorf("Expected Unknown album, got %q", e.Album)
	}
	if e.TrackNumber != 0 || e.Duration != 0 {
		t.Errorf("Expected zero track/duration, got %d/%d", e.TrackNumber, e.Duration)
	}
	if e.ThumbnailURIs == nil || len(e.ThumbnailURIs) != 0 {
		t.Errorf("Expected empty thumbnail list, got %v", e.ThumbnailURIs)
	}
}

func TestClassifyNeverFails(t *testing.T) {
	bags := []Props{
		nil,
		{},
		{"type": 42},
		{"type": nil, "title": []int{1}},
		{"type": "video", "duration": "garbage", "width": "wide"},
		{"type": "audio", "trackNumber": "7/12", "Artist": []string{"A", "B"}},
	}

	for i, props := range bags {
		e := Classify(props)
		if e == nil {
			t.Fatalf("bag %d: Expected entity, got nil", i)
		}
		if e.Title == "" {
			t.Errorf("bag %d: Expected displayable title", i)
		}
	}

	e := Classify(bags[5])
	if e.TrackNumber != 7 {
		t.Errorf("Expected track 7 from 7/12, got %d", e.TrackNumber)
	}
	if ArtistName(e) != "A, B" {
		t.Errorf("Expected joined artists, got %q", ArtistName(e))
	}
}

func TestClassifyVideoAndImage(t *testing.T) {
	v := Classify(Props{"type": "VIDEO", "title": "Clip", "width": 1920, "height": 1080, "durationMs": 5000})
	if v.Kind() != KindVideo {
		t.Fatalf("Expected VIDEO, got %s", v.Kind())
	}
	if v.Width != 1920 || v.Height != 1080 {
		t.Errorf("Expected 1920x1080, got %dx%d", v.Width, v.Height)
	}
	if v.Duration != 5000 {
		t.Errorf("Expected 5000ms, got %d", v.Duration)
	}

	img := Classify(Props{"type": "picture", "title": "Cover", "width": 600.0, "height": 600.0})
	if img.Kind() != KindImage || img.Width != 600 {
		t.Errorf("Expected 600px IMAGE, got %s %d", img.Kind(), img.Width)
	}
	if img.Artists != nil {
		t.Errorf("Expected no artists on image, got %v", img.Artists)
	}
}

func TestClassifyContainer(t *testing.T) {
	c := Classify(Props{"type": "container", "id": "0$1", "title": "Music", "Artist": "ignored"})
	if !c.IsContainer() {
		t.Fatalf("Expected container, got %s", c.Kind())
	}
	if c.Artists != nil || c.Album != "" {
		t.Errorf("Expected no media fields on container")
	}
}

func TestClockToMillis(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0:03:35.300", 215300},
		{"1:00:00", 3600000},
		{"03:20", 200000},
		{"", 0},
		{"42", 0},
		{"a:b:c", 0},
	}
	for _, tt := range tests {
		if got := ClockToMillis(tt.in); got != tt.want {
			t.Errorf("ClockToMillis(%q): Expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestEntityJSONCarriesType(t *testing.T) {
	e := Classify(Props{"type": "audio", "title": "T"})
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"AUDIO"`) {
		t.Errorf("Expected type discriminant in %s", data)
	}
}
