package contentdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

// Item is one indexed media file.
type Item struct {
	URI         string
	Kind        media.Kind
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	DurationMs  int64
	MimeType    string
	Width       int
	Height      int
	Thumbnail   string
	ModifiedAt  time.Time
}

// Upsert inserts or replaces items keyed by URI.
func (d *DB) Upsert(ctx context.Context, items []Item) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO content (uri, kind, title, artist, album, track_number, duration_ms,
				mime_type, width, height, thumbnail, modified_at, scanned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(uri) DO UPDATE SET
				kind = excluded.kind,
				title = excluded.title,
				artist = excluded.artist,
				album = excluded.album,
				track_number = excluded.track_number,
				duration_ms = excluded.duration_ms,
				mime_type = excluded.mime_type,
				width = excluded.width,
				height = excluded.height,
				thumbnail = excluded.thumbnail,
				modified_at = excluded.modified_at,
				scanned_at = excluded.scanned_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC().Format(time.RFC3339)
		for _, it := range items {
			_, err := stmt.ExecContext(ctx,
				it.URI, string(it.Kind), it.Title, it.Artist, it.Album, it.TrackNumber, it.DurationMs,
				it.MimeType, it.Width, it.Height, it.Thumbnail, it.ModifiedAt.UTC().Format(time.RFC3339), now)
			if err != nil {
				return fmt.Errorf("failed to upsert %q: %w", it.URI, err)
			}
		}
		return nil
	})
}

// RemoveMissing deletes every item whose URI is not in keep and returns how
// many were removed.
func (d *DB) RemoveMissing(ctx context.Context, keep map[string]bool) (int, error) {
	removed := 0
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT uri FROM content")
		if err != nil {
			return fmt.Errorf("failed to list content: %w", err)
		}
		var stale []string
		for rows.Next() {
			var uri string
			if err := rows.Scan(&uri); err != nil {
				rows.Close()
				return err
			}
			if !keep[uri] {
				stale = append(stale, uri)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, uri := range stale {
			if _, err := tx.ExecContext(ctx, "DELETE FROM content WHERE uri = ?", uri); err != nil {
				return fmt.Errorf("failed to delete %q: %w", uri, err)
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Count returns the number of indexed items per kind.
func (d *DB) Count(ctx context.Context) (map[media.Kind]int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM content GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	defer rows.Close()

	counts := make(map[media.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[media.Kind(kind)] = n
	}
	return counts, rows.Err()
}

// Find returns the property bags of every item of kind. It serves the local
// library as its collection source.
func (d *DB) Find(ctx context.Context, kind media.Kind) ([]media.Props, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT uri, title, artist, album, track_number, duration_ms, mime_type, width, height, thumbnail
		FROM content WHERE kind = ?
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s content: %w", kind, err)
	}
	defer rows.Close()

	var out []media.Props
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.URI, &it.Title, &it.Artist, &it.Album, &it.TrackNumber,
			&it.DurationMs, &it.MimeType, &it.Width, &it.Height, &it.Thumbnail); err != nil {
			return nil, err
		}
		it.Kind = kind
		out = append(out, it.Props())
	}
	return out, rows.Err()
}

// Props maps the item onto the property names understood by media.Classify.
func (it Item) Props() media.Props {
	props := media.Props{
		"type":        media.TypeTag(it.Kind),
		"id":          it.URI,
		"title":       it.Title,
		"sourceUri":   it.URI,
		"mimeType":    it.MimeType,
		"trackNumber": it.TrackNumber,
		"durationMs":  it.DurationMs,
		"width":       it.Width,
		"height":      it.Height,
	}
	if it.Artist != "" {
		props["Artist"] = it.Artist
	}
	if it.Album != "" {
		props["Album"] = it.Album
	}
	if it.Thumbnail != "" {
		props["AlbumArtURL"] = it.Thumbnail
	} else if it.Kind == media.KindAudio {
		props["AlbumArtURL"] = "/albumart?path=" + url.QueryEscape(it.URI)
	}
	return props
}
