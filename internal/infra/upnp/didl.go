package upnp

import (
	"encoding/xml"
	"strings"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

type didlLite struct {
	XMLName    xml.Name     `xml:"urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/ DIDL-Lite"`
	Containers []didlObject `xml:"urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/ container"`
	Items      []didlObject `xml:"urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/ item"`
}

type didlObject struct {
	ID          string    `xml:"id,attr"`
	ParentID    string    `xml:"parentID,attr"`
	Title       string    `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator     string    `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Class       string    `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ class"`
	Album       string    `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ album"`
	Artists     []string  `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ artist"`
	AlbumArtURI []string  `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ albumArtURI"`
	TrackNumber string    `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ originalTrackNumber"`
	Resources   []didlRes `xml:"res"`
}

type didlRes struct {
	Value        string `xml:",chardata"`
	ProtocolInfo string `xml:"protocolInfo,attr"`
	Duration     string `xml:"duration,attr"`
	Resolution   string `xml:"resolution,attr"`
}

// typeTag turns a upnp:class such as "object.item.audioItem.musicTrack" into
// the tag media.ClassifyType understands ("audioItem.musicTrack").
func typeTag(class string) string {
	tag := strings.TrimSpace(class)
	if rest, ok := strings.CutPrefix(tag, "object.item."); ok {
		return rest
	}
	return strings.TrimPrefix(tag, "object.")
}

// containerProps maps a DIDL container to a property bag.
func containerProps(obj didlObject) media.Props {
	return media.Props{
		"type":        "container",
		"Path":        obj.ID,
		"DisplayName": obj.Title,
	}
}

// itemProps maps a DIDL item to a property bag, resolving relative URLs
// against base.
func itemProps(obj didlObject, base string) media.Props {
	props := media.Props{
		"type":        typeTag(obj.Class),
		"Path":        obj.ID,
		"DisplayName": obj.Title,
	}

	artists := make([]string, 0, len(obj.Artists)+1)
	for _, a := range obj.Artists {
		if a = strings.TrimSpace(a); a != "" {
			artists = append(artists, a)
		}
	}
	if len(artists) == 0 && obj.Creator != "" {
		artists = append(artists, obj.Creator)
	}
	if len(artists) > 0 {
		props["Artist"] = artists
	}
	if obj.Album != "" {
		props["Album"] = obj.Album
	}
	if obj.TrackNumber != "" {
		props["trackNumber"] = obj.TrackNumber
	}
	if len(obj.AlbumArtURI) > 0 && obj.AlbumArtURI[0] != "" {
		props["AlbumArtURL"] = resolveURL(base, strings.TrimSpace(obj.AlbumArtURI[0]))
	}

	urls := make([]string, 0, len(obj.Resources))
	for _, res := range obj.Resources {
		if v := strings.TrimSpace(res.Value); v != "" {
			urls = append(urls, resolveURL(base, v))
		}
	}
	if len(urls) > 0 {
		props["URLs"] = urls
	}

	if len(obj.Resources) > 0 {
		res := obj.Resources[0]
		if mime := mimeFromProtocolInfo(res.ProtocolInfo); mime != "" {
			props["mimeType"] = mime
		}
		if res.Duration != "" {
			props["duration"] = res.Duration
		}
		if w, h, ok := strings.Cut(res.Resolution, "x"); ok {
			props["width"] = w
			props["height"] = h
		}
	}
	return props
}

// mimeFromProtocolInfo extracts the content format from
// "http-get:*:audio/flac:*".
func mimeFromProtocolInfo(protocolInfo string) string {
	parts := strings.Split(protocolInfo, ":")
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[2])
	}
	return ""
}
