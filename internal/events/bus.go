// Package events provides an in-process publish/subscribe bus used to fan out
// library state changes to the transport layer.
package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	// Remote browsing
	EventSourcesChanged EventType = "sources.changed"
	EventSourceLost     EventType = "source.lost"
	EventItemsChanged   EventType = "items.changed"
	EventBrowseComplete EventType = "browse.complete"
	EventBrowseFailed   EventType = "browse.failed"

	// Local index
	EventLocalLoaded EventType = "local.loaded"

	// Navigation and playback
	EventViewChanged     EventType = "view.changed"
	EventCarouselChanged EventType = "carousel.changed"
	EventPlayerIndex     EventType = "player.index"
)

// Payload is a generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// subscriberBuffer bounds each subscriber channel. Publish drops events for
// subscribers whose buffer is full.
const subscriberBuffer = 16

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for one or more event types. The same
// channel receives every listed type.
func (b *Bus) Subscribe(eventTypes ...EventType) Subscriber {
	ch := make(Subscriber, subscriberBuffer)
	b.mu.Lock()
	for _, et := range eventTypes {
		b.subs[et] = append(b.subs[et], ch)
	}
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers without blocking.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	if b == nil {
		return
	}
	if payload == nil {
		payload = Payload{}
	}
	payload["event"] = string(eventType)

	// Sends never block, so holding the read lock keeps Unsubscribe from
	// closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber from every event type and closes it.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	found := false
	for et, subs := range b.subs {
		for i, candidate := range subs {
			if candidate == sub {
				b.subs[et] = append(subs[:i], subs[i+1:]...)
				found = true
				break
			}
		}
	}
	if found {
		close(sub)
	}
}
