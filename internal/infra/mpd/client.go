// Package mpd provides a wrapper around the gompd MPD client.
package mpd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned by Ping before Connect succeeds.
var ErrNotConnected = errors.New("not connected")

// Client wraps the MPD client with reconnection logic.
type Client struct {
	mu       sync.RWMutex
	client   *mpd.Client
	watcher  *mpd.Watcher
	host     string
	port     int
	password string
}

// NewClient creates a new MPD client wrapper.
func NewClient(host string, port int, password string) *Client {
	return &Client{
		host:     host,
		port:     port,
		password: password,
	}
}

func (c *Client) addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// Connect establishes connection to MPD.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked()
}

// connectLocked establishes connection (must hold lock).
func (c *Client) connectLocked() error {
	log.Info().Str("addr", c.addr()).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", c.addr())
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}

	if c.password != "" {
		if err := client.Command("password %s", c.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}

	c.client = client
	log.Info().Msg("Connected to MPD")
	return nil
}

// ensureConnected checks connection and reconnects if needed.
func (c *Client) ensureConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return c.connectLocked()
	}

	if err := c.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting...")
		c.client.Close()
		c.client = nil
		return c.connectLocked()
	}

	return nil
}

// with runs fn against a live connection.
func (c *Client) with(fn func(*mpd.Client) error) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return fn(c.client)
}

// Close closes the watcher and the MPD connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}

	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// Ping checks if the connection is alive.
func (c *Client) Ping() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil {
		return ErrNotConnected
	}
	return c.client.Ping()
}

// Status returns the current MPD status.
func (c *Client) Status() (map[string]string, error) {
	var attrs mpd.Attrs
	err := c.with(func(m *mpd.Client) (err error) {
		attrs, err = m.Status()
		return err
	})
	return attrs, err
}

// CurrentSong returns the currently playing song.
func (c *Client) CurrentSong() (map[string]string, error) {
	var attrs mpd.Attrs
	err := c.with(func(m *mpd.Client) (err error) {
		attrs, err = m.CurrentSong()
		return err
	})
	return attrs, err
}

// Play starts playback at pos. If pos is -1, resumes the current track.
func (c *Client) Play(pos int) error {
	return c.with(func(m *mpd.Client) error {
		if pos < 0 {
			return m.Pause(false)
		}
		return m.Play(pos)
	})
}

// Pause pauses or resumes playback.
func (c *Client) Pause(pause bool) error {
	return c.with(func(m *mpd.Client) error { return m.Pause(pause) })
}

// Stop stops playback.
func (c *Client) Stop() error {
	return c.with(func(m *mpd.Client) error { return m.Stop() })
}

// Next plays the next queue entry.
func (c *Client) Next() error {
	return c.with(func(m *mpd.Client) error { return m.Next() })
}

// Previous plays the previous queue entry.
func (c *Client) Previous() error {
	return c.with(func(m *mpd.Client) error { return m.Previous() })
}

// Clear clears the queue.
func (c *Client) Clear() error {
	return c.with(func(m *mpd.Client) error { return m.Clear() })
}

// Add adds a URI to the queue.
func (c *Client) Add(uri string) error {
	return c.with(func(m *mpd.Client) error { return m.Add(uri) })
}

// ListAllInfo lists every song below uri in the MPD database.
func (c *Client) ListAllInfo(uri string) ([]map[string]string, error) {
	var songs []mpd.Attrs
	err := c.with(func(m *mpd.Client) (err error) {
		songs, err = m.ListAllInfo(uri)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, len(songs))
	for i, s := range songs {
		out[i] = s
	}
	return out, nil
}

// ReadPicture retrieves embedded album art for a song.
func (c *Client) ReadPicture(uri string) ([]byte, error) {
	var data []byte
	err := c.with(func(m *mpd.Client) (err error) {
		data, err = m.ReadPicture(uri)
		return err
	})
	return data, err
}

// AlbumArt retrieves album art from the song's directory (cover.jpg, etc).
func (c *Client) AlbumArt(uri string) ([]byte, error) {
	var data []byte
	err := c.with(func(m *mpd.Client) (err error) {
		data, err = m.AlbumArt(uri)
		return err
	})
	return data, err
}

// Watch reports changed MPD subsystems until ctx is done.
func (c *Client) Watch(ctx context.Context, subsystems ...string) (<-chan string, error) {
	watcher, err := mpd.NewWatcher("tcp", c.addr(), c.password, subsystems...)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	ch := make(chan string, 10)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case subsystem, ok := <-watcher.Event:
				if !ok {
					return
				}
				select {
				case ch <- subsystem:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("MPD watcher error")
				time.Sleep(time.Second)
			}
		}
	}()

	return ch, nil
}
