// Package carousel models the swipeable content strip shown while audio
// plays: the loaded list and the focused position.
package carousel

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/events"
)

// Service holds the carousel content and position.
type Service struct {
	bus *events.Bus

	mu        sync.RWMutex
	items     []*media.Entity
	index     int
	listeners []func(int)
}

// NewService creates an empty carousel. bus may be nil.
func NewService(bus *events.Bus) *Service {
	return &Service{bus: bus, index: -1}
}

// LoadMediaContent replaces the content and focuses index. Out of range
// indexes are ignored.
func (s *Service) LoadMediaContent(list []*media.Entity, index int) {
	if index < 0 || index >= len(list) {
		log.Debug().Int("index", index).Int("count", len(list)).Msg("Ignoring carousel load out of range")
		return
	}

	s.mu.Lock()
	s.items = append([]*media.Entity(nil), list...)
	s.index = index
	s.mu.Unlock()

	s.bus.Publish(events.EventCarouselChanged, events.Payload{"index": index, "count": len(list)})
}

// SlideTo moves the focus without notifying index listeners.
func (s *Service) SlideTo(index int) {
	if _, ok := s.move(index); ok {
		s.bus.Publish(events.EventCarouselChanged, events.Payload{"index": index})
	}
}

// Swiped records a user swipe to index and notifies index listeners.
func (s *Service) Swiped(index int) {
	listeners, ok := s.move(index)
	if !ok {
		return
	}
	s.bus.Publish(events.EventCarouselChanged, events.Payload{"index": index})
	for _, fn := range listeners {
		fn(index)
	}
}

func (s *Service) move(index int) ([]func(int), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) || index == s.index {
		return nil, false
	}
	s.index = index
	return append([]func(int){}, s.listeners...), true
}

// AddIndexChangeListener registers fn for user-initiated index changes.
func (s *Service) AddIndexChangeListener(fn func(int)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Index returns the focused position, or -1 when empty.
func (s *Service) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Items returns a copy of the loaded content.
func (s *Service) Items() []*media.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*media.Entity, len(s.items))
	copy(out, s.items)
	return out
}
