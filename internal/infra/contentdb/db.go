// Package contentdb provides the SQLite-backed local content index filled by
// mediascan and read by the local library.
package contentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	// CurrentSchemaVersion is the current database schema version.
	CurrentSchemaVersion = "1"

	// DefaultDBPath is the default path for the content database.
	DefaultDBPath = "data/content.db"
)

// ErrNotOpen is returned by queries on a closed database.
var ErrNotOpen = errors.New("database not open")

// DB represents the SQLite content database.
type DB struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewDB creates a new content database instance.
func NewDB(path string) *DB {
	if path == "" {
		path = DefaultDBPath
	}
	return &DB{path: path}
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Open opens the database and initializes the schema.
func (d *DB) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", d.path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open content database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d.db = db

	if err := d.initSchema(); err != nil {
		d.db.Close()
		d.db = nil
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", d.path).Msg("Content database opened")
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

func (d *DB) initSchema() error {
	version := d.getMeta("schema_version")
	if version == "" {
		if err := d.createSchema(); err != nil {
			return err
		}
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	if version != CurrentSchemaVersion {
		log.Info().
			Str("current", version).
			Str("target", CurrentSchemaVersion).
			Msg("Migrating content schema")
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}
	return nil
}

func (d *DB) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS content (
		uri TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		artist TEXT NOT NULL DEFAULT '',
		album TEXT NOT NULL DEFAULT '',
		track_number INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		thumbnail TEXT NOT NULL DEFAULT '',
		modified_at TEXT,
		scanned_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS content_meta (
		key TEXT PRIMARY KEY,
		value TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_content_kind ON content(kind);
	CREATE INDEX IF NOT EXISTS idx_content_artist ON content(artist COLLATE NOCASE);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Msg("Content schema created")
	return nil
}

func (d *DB) getMeta(key string) string {
	var value string
	if err := d.db.QueryRow("SELECT value FROM content_meta WHERE key = ?", key).Scan(&value); err != nil {
		return ""
	}
	return value
}

func (d *DB) setMeta(key, value string) error {
	now := time.Now().Format(time.RFC3339)
	_, err := d.db.Exec(`
		INSERT INTO content_meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	return err
}

// SchemaVersion returns the stored schema version.
func (d *DB) SchemaVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return ""
	}
	return d.getMeta("schema_version")
}

// LastScan returns when a scan last completed, or the zero time.
func (d *DB) LastScan() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, d.getMeta("last_scan"))
	return t
}

// MarkScanComplete records the completion time of a scan.
func (d *DB) MarkScanComplete(at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return ErrNotOpen
	}
	return d.setMeta("last_scan", at.UTC().Format(time.RFC3339))
}

func (d *DB) conn() (*sql.DB, error) {
	if d.db == nil {
		return nil, ErrNotOpen
	}
	return d.db, nil
}

// withTx runs fn in a transaction, committing when it returns nil.
func (d *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	db, err := d.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
