package media

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type tag prefixes, matched case-insensitively against the "type" property.
var (
	containerPrefixes = []string{"container", "album", "person", "genre"}
	videoPrefixes     = []string{"video"}
	audioPrefixes     = []string{"audio", "music"}
	imagePrefixes     = []string{"image", "picture"}
)

// ClassifyType maps a source type tag to a Kind.
func ClassifyType(typeTag string) Kind {
	tag := strings.ToLower(strings.TrimSpace(typeTag))
	switch {
	case hasAnyPrefix(tag, containerPrefixes):
		return KindContainer
	case hasAnyPrefix(tag, videoPrefixes):
		return KindVideo
	case hasAnyPrefix(tag, audioPrefixes):
		return KindAudio
	case hasAnyPrefix(tag, imagePrefixes):
		return KindImage
	default:
		return KindOther
	}
}

// Classify builds a normalized entity from a property bag. It never fails:
// every attribute falls back to a default when missing or malformed.
//
// Property bags come from the local content index (lowercase keys, duration
// in seconds) and from remote media servers (DisplayName/Path/Artist/Album,
// clock-formatted durations), so each attribute is read from several aliases.
func Classify(props Props) *Entity {
	kind := ClassifyType(props.String("type", "Type"))

	e := &Entity{
		ID:    props.String("Path", "id", "ID"),
		Title: props.String("DisplayName", "title", "name"),
		kind:  kind,
	}
	if e.Title == "" {
		e.Title = UnknownValue
	}

	if kind == KindContainer {
		return e
	}

	e.MimeType = props.String("mimeType", "MimeType")
	if urls := props.Strings("URLs"); len(urls) > 0 {
		e.ContentURI = urls[0]
	} else {
		e.ContentURI = props.String("sourceUri", "contentURI")
	}
	e.ThumbnailURIs = thumbnailsOf(props)

	switch kind {
	case KindAudio:
		e.Artists = artistsOf(props)
		e.Album = albumOf(props)
		e.Duration = durationOf(props)
		e.TrackNumber = trackNumberOf(props)
	case KindVideo:
		e.Artists = artistsOf(props)
		e.Album = albumOf(props)
		e.Duration = durationOf(props)
		e.Width = props.Int("width", "Width")
		e.Height = props.Int("height", "Height")
	case KindImage:
		e.Width = props.Int("width", "Width")
		e.Height = props.Int("height", "Height")
	}

	return e
}

func artistsOf(props Props) []string {
	for _, key := range []string{"Artist", "author", "artists"} {
		if names := props.Strings(key); len(names) > 0 {
			return names
		}
	}
	return []string{UnknownValue}
}

func albumOf(props Props) string {
	if album := props.String("Album", "collection", "album"); album != "" {
		return album
	}
	return UnknownValue
}

func thumbnailsOf(props Props) []string {
	thumbs := make([]string, 0, 1)
	if art := props.String("AlbumArtURL"); art != "" {
		thumbs = append(thumbs, art)
	}
	for _, uri := range props.Strings("thumbnailURIs") {
		if uri != "" {
			thumbs = append(thumbs, uri)
		}
	}
	return thumbs
}

// durationOf normalizes to milliseconds. "durationMs" is taken as is;
// numeric "duration" values are seconds; string values may be seconds
// ("215.3") or clock notation ("0:03:35.300").
func durationOf(props Props) int64 {
	if v, ok := props["durationMs"]; ok {
		if ms, ok := toFloat(v); ok && ms > 0 {
			return int64(ms)
		}
	}
	for _, key := range []string{"duration", "Duration"} {
		v, ok := props[key]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && strings.Contains(s, ":") {
			return ClockToMillis(s)
		}
		if secs, ok := toFloat(v); ok && secs > 0 {
			return int64(math.Round(secs * 1000))
		}
	}
	return 0
}

// trackNumberOf accepts plain numbers and "3/12" style tags.
func trackNumberOf(props Props) int {
	v, ok := props["trackNumber"]
	if !ok {
		return 0
	}
	if s, isString := v.(string); isString {
		s, _, _ = strings.Cut(s, "/")
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	if f, ok := toFloat(v); ok && f > 0 {
		return int(f)
	}
	return 0
}

// ClockToMillis converts "H:MM:SS(.fff)" or "MM:SS" to milliseconds.
// Malformed input yields 0.
func ClockToMillis(clock string) int64 {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	for len(parts) < 3 {
		parts = append([]string{"0"}, parts...)
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0
	}
	mins, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0
	}
	return hours*3600000 + mins*60000 + int64(math.Round(secs*1000))
}

// String returns the first non-empty string value among keys.
func (p Props) String(keys ...string) string {
	for _, key := range keys {
		v, ok := p[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case []string:
			if len(val) > 0 {
				s = val[0]
			}
		case fmt.Stringer:
			s = val.String()
		default:
			if f, ok := toFloat(val); ok {
				s = strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Strings returns a list value for key. A single string becomes a
// one-element list; empty elements are dropped.
func (p Props) Strings(key string) []string {
	var out []string
	switch val := p[key].(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []string:
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// Int returns the first numeric value among keys, or 0.
func (p Props) Int(keys ...string) int {
	for _, key := range keys {
		if v, ok := p[key]; ok {
			if f, ok := toFloat(v); ok {
				return int(f)
			}
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
