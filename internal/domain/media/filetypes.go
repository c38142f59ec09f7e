package media

import (
	"path"
	"strings"
)

// AudioExtensions lists file extensions indexed as audio.
var AudioExtensions = map[string]bool{
	".flac": true, ".mp3": true, ".wav": true, ".aiff": true,
	".aif": true, ".ogg": true, ".m4a": true, ".aac": true,
	".wma": true, ".dsf": true, ".dff": true, ".ape": true,
	".wv": true, ".mpc": true, ".opus": true, ".alac": true,
}

// VideoExtensions lists file extensions indexed as video.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpeg": true, ".mpg": true, ".3gp": true, ".ts": true,
}

var mimeTypes = map[string]string{
	".flac": "audio/flac",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
	".dsf":  "audio/dsf",
	".dff":  "audio/dff",
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
}

// KindForPath guesses the kind of a file from its extension.
// Unrecognized extensions give KindOther.
func KindForPath(p string) Kind {
	ext := strings.ToLower(path.Ext(p))
	switch {
	case AudioExtensions[ext]:
		return KindAudio
	case VideoExtensions[ext]:
		return KindVideo
	default:
		return KindOther
	}
}

// MimeTypeForPath returns the MIME type for a file, or
// "application/octet-stream".
func MimeTypeForPath(p string) string {
	if mime, ok := mimeTypes[strings.ToLower(path.Ext(p))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// TypeTag returns the lowercase type tag a content source should store for
// a kind, so that ClassifyType maps it back to the same kind.
func TypeTag(kind Kind) string {
	return strings.ToLower(string(kind))
}
