// Package player provides the playback collaborator: it hands content lists
// to MPD and keeps the playing index in sync with the browsing view.
package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/events"
	"github.com/edumarques81/stellar-media-library/internal/metrics"
)

var (
	// ErrEmptyContent is returned when asked to play an empty list.
	ErrEmptyContent = errors.New("empty content list")

	// ErrIndexOutOfRange is returned for a start index outside the list.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Backend is the subset of the MPD client used for playback.
type Backend interface {
	Clear() error
	Add(uri string) error
	Play(pos int) error
	Pause(pause bool) error
	Stop() error
	Next() error
	Previous() error
	Status() (map[string]string, error)
	CurrentSong() (map[string]string, error)
}

// Service handles player operations.
type Service struct {
	mpd Backend
	bus *events.Bus

	mu        sync.RWMutex
	queue     []*media.Entity
	kind      media.Kind
	index     int
	listeners []func(int)
}

// NewService creates a new player service. bus may be nil.
func NewService(backend Backend, bus *events.Bus) *Service {
	return &Service{
		mpd:   backend,
		bus:   bus,
		kind:  media.KindOther,
		index: -1,
	}
}

// PlayContent replaces the queue with list and, when autoplay is set, starts
// playing at index.
func (s *Service) PlayContent(list []*media.Entity, index int, autoplay bool, kind media.Kind) error {
	if len(list) == 0 {
		return ErrEmptyContent
	}
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(list))
	}

	mode := "queue"
	if autoplay {
		mode = "autoplay"
	}
	metrics.PlaybackRequestsTotal.WithLabelValues(string(kind), mode).Inc()

	log.Info().
		Str("kind", string(kind)).
		Int("count", len(list)).
		Int("index", index).
		Bool("autoplay", autoplay).
		Msg("PlayContent")

	if err := s.mpd.Clear(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	for _, item := range list {
		uri := item.ContentURI
		if uri == "" {
			uri = item.ID
		}
		if err := s.mpd.Add(uri); err != nil {
			// The MPD queue no longer matches the previous list.
			s.mu.Lock()
			s.queue = nil
			s.kind = media.KindOther
			s.index = -1
			s.mu.Unlock()
			return fmt.Errorf("failed to add %q to queue: %w", uri, err)
		}
	}

	s.mu.Lock()
	s.queue = append([]*media.Entity(nil), list...)
	s.kind = kind
	s.index = index
	s.mu.Unlock()

	if !autoplay {
		return nil
	}
	if err := s.mpd.Play(index); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// CurrentType returns the kind of the content last handed to the player.
func (s *Service) CurrentType() media.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

// Index returns the current queue position, or -1.
func (s *Service) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Queue returns a copy of the current content list.
func (s *Service) Queue() []*media.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*media.Entity, len(s.queue))
	copy(out, s.queue)
	return out
}

// AddIndexChangeListener registers fn to be called when the playing index
// changes on the player side.
func (s *Service) AddIndexChangeListener(fn func(int)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// SyncIndex reads the MPD queue position and notifies listeners when it
// moved. It is driven by the MPD "player" idle subsystem.
func (s *Service) SyncIndex() error {
	status, err := s.mpd.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	pos, err := strconv.Atoi(status["song"])
	if err != nil {
		return nil
	}

	s.mu.Lock()
	if pos == s.index || pos >= len(s.queue) {
		s.mu.Unlock()
		return nil
	}
	s.index = pos
	listeners := append([]func(int){}, s.listeners...)
	s.mu.Unlock()

	log.Debug().Int("index", pos).Msg("Player index changed")
	s.bus.Publish(events.EventPlayerIndex, events.Payload{"index": pos})
	for _, fn := range listeners {
		fn(pos)
	}
	return nil
}

// GetState returns the current player state as a flat map for clients.
func (s *Service) GetState() (map[string]interface{}, error) {
	status, err := s.mpd.Status()
	if err != nil {
		return nil, err
	}

	song, err := s.mpd.CurrentSong()
	if err != nil {
		// Not fatal - might not have a song playing
		song = make(map[string]string)
	}

	state := buildState(status, song)
	s.mu.RLock()
	state["type"] = string(s.kind)
	state["index"] = s.index
	if s.index >= 0 && s.index < len(s.queue) {
		item := s.queue[s.index]
		state["title"] = item.Title
		state["artist"] = media.ArtistName(item)
		state["album"] = media.AlbumName(item)
		state["albumart"] = media.ThumbnailPath(item, s.kind)
	}
	s.mu.RUnlock()
	return state, nil
}

// buildState converts MPD status and song to a client state map.
func buildState(status, song map[string]string) map[string]interface{} {
	state := make(map[string]interface{})

	switch status["state"] {
	case "play":
		state["status"] = "play"
	case "pause":
		state["status"] = "pause"
	default:
		state["status"] = "stop"
	}

	if pos, err := strconv.Atoi(status["song"]); err == nil {
		state["position"] = pos
	} else {
		state["position"] = 0
	}

	// MPD reports seconds with a fractional part
	if elapsed, err := strconv.ParseFloat(status["elapsed"], 64); err == nil {
		state["seek"] = int(elapsed * 1000)
	} else {
		state["seek"] = 0
	}

	if duration, err := strconv.ParseFloat(status["duration"], 64); err == nil {
		state["duration"] = int(duration)
	} else if duration, err := strconv.ParseFloat(song["Time"], 64); err == nil {
		state["duration"] = int(duration)
	} else {
		state["duration"] = 0
	}

	if vol, err := strconv.Atoi(status["volume"]); err == nil {
		state["volume"] = vol
	} else {
		state["volume"] = 100
	}

	state["title"] = song["Title"]
	if state["title"] == "" {
		if file := song["file"]; file != "" {
			parts := strings.Split(file, "/")
			state["title"] = parts[len(parts)-1]
		}
	}
	state["artist"] = song["Artist"]
	state["album"] = song["Album"]
	state["uri"] = song["file"]

	if file := song["file"]; file != "" {
		state["albumart"] = "/albumart?path=" + file
	} else {
		state["albumart"] = ""
	}

	// samplerate:bits:channels
	if audio := status["audio"]; audio != "" {
		parts := strings.Split(audio, ":")
		if len(parts) >= 2 {
			state["samplerate"] = parts[0]
			state["bitdepth"] = parts[1]
		}
	}
	return state
}

// Play plays the queue entry at index, or resumes when index < 0.
func (s *Service) Play(index int) error {
	log.Info().Int("index", index).Msg("Play")
	if err := s.mpd.Play(index); err != nil {
		return err
	}
	if index >= 0 {
		s.mu.Lock()
		s.index = index
		s.mu.Unlock()
	}
	return nil
}

// Pause pauses playback.
func (s *Service) Pause() error {
	log.Info().Msg("Pause")
	return s.mpd.Pause(true)
}

// Stop stops playback.
func (s *Service) Stop() error {
	log.Info().Msg("Stop")
	return s.mpd.Stop()
}

// Next plays the next queue entry.
func (s *Service) Next() error {
	log.Info().Msg("Next")
	return s.mpd.Next()
}

// Previous plays the previous queue entry.
func (s *Service) Previous() error {
	log.Info().Msg("Previous")
	return s.mpd.Previous()
}
