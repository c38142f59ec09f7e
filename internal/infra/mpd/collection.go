package mpd

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

// SongLister lists the songs of the MPD database.
type SongLister interface {
	ListAllInfo(uri string) ([]map[string]string, error)
}

// Collection serves the local content index from the MPD database.
type Collection struct {
	lister SongLister
	root   string
}

// NewCollection creates a collection over the songs below root ("" for the
// whole database).
func NewCollection(lister SongLister, root string) *Collection {
	return &Collection{lister: lister, root: root}
}

// Find returns the property bags of every song whose file type matches kind.
func (c *Collection) Find(ctx context.Context, kind media.Kind) ([]media.Props, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	songs, err := c.lister.ListAllInfo(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list MPD database: %w", err)
	}

	out := make([]media.Props, 0, len(songs))
	for _, song := range songs {
		file := song["file"]
		if file == "" || media.KindForPath(file) != kind {
			continue
		}
		out = append(out, songProps(song, kind))
	}
	return out, nil
}

// songProps maps MPD song attributes onto the property names understood by
// media.Classify.
func songProps(song map[string]string, kind media.Kind) media.Props {
	file := song["file"]

	title := song["Title"]
	if title == "" {
		title = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}

	props := media.Props{
		"type":        media.TypeTag(kind),
		"id":          file,
		"title":       title,
		"sourceUri":   file,
		"mimeType":    media.MimeTypeForPath(file),
		"AlbumArtURL": "/albumart?path=" + url.QueryEscape(file),
	}

	if artist := firstNonEmpty(song["Artist"], song["AlbumArtist"]); artist != "" {
		props["Artist"] = artist
	}
	if album := song["Album"]; album != "" {
		props["Album"] = album
	}
	if track := song["Track"]; track != "" {
		props["trackNumber"] = track
	}

	if secs, err := strconv.ParseFloat(firstNonEmpty(song["duration"], song["Time"]), 64); err == nil {
		props["duration"] = secs
	}
	return props
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
