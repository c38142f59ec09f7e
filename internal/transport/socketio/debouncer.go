package socketio

import (
	"sync"
	"time"

	"github.com/edumarques81/stellar-media-library/internal/events"
)

// Topic is a push channel towards clients.
type Topic string

const (
	TopicLibrary  Topic = "library"
	TopicCarousel Topic = "carousel"
	TopicState    Topic = "state"
)

// topicsFor maps bus events and MPD subsystems onto the pushes they affect.
func topicsFor(trigger string) []Topic {
	switch trigger {
	case string(events.EventSourcesChanged), string(events.EventSourceLost),
		string(events.EventItemsChanged), string(events.EventBrowseComplete),
		string(events.EventBrowseFailed), string(events.EventLocalLoaded),
		string(events.EventViewChanged):
		return []Topic{TopicLibrary}
	case string(events.EventCarouselChanged):
		return []Topic{TopicCarousel}
	case string(events.EventPlayerIndex):
		return []Topic{TopicCarousel, TopicState}
	case "player", "mixer", "options", "playlist":
		return []Topic{TopicState}
	}
	return nil
}

// BroadcastDebouncer collapses rapid change events into batched broadcasts.
// Multiple triggers within the debounce window result in a single
// broadcast per affected topic.
type BroadcastDebouncer struct {
	window    time.Duration
	callbacks map[Topic]func()

	mu      sync.Mutex
	pending map[Topic]bool
	timer   *time.Timer
	stopped bool
}

// NewBroadcastDebouncer creates a debouncer with the given window duration.
// Topics without a callback are ignored.
func NewBroadcastDebouncer(window time.Duration, callbacks map[Topic]func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:    window,
		callbacks: callbacks,
		pending:   make(map[Topic]bool),
	}
}

// Trigger records that a bus event or MPD subsystem has changed. The
// callbacks are deferred until the window elapses without further triggers.
func (d *BroadcastDebouncer) Trigger(trigger string) {
	topics := topicsFor(trigger)
	if len(topics) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	for _, t := range topics {
		d.pending[t] = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires callbacks for pending topics in a fixed order.
func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[Topic]bool)
	d.mu.Unlock()

	for _, t := range []Topic{TopicLibrary, TopicCarousel, TopicState} {
		if pending[t] {
			if cb := d.callbacks[t]; cb != nil {
				cb()
			}
		}
	}
}

// Stop prevents any further callbacks from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[Topic]bool)
}
