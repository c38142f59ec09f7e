package socketio

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/edumarques81/stellar-media-library/internal/events"
)

type topicCounter struct {
	library, carousel, state int32
}

func (c *topicCounter) callbacks() map[Topic]func() {
	return map[Topic]func(){
		TopicLibrary:  func() { atomic.AddInt32(&c.library, 1) },
		TopicCarousel: func() { atomic.AddInt32(&c.carousel, 1) },
		TopicState:    func() { atomic.AddInt32(&c.state, 1) },
	}
}

func (c *topicCounter) counts() (int32, int32, int32) {
	return atomic.LoadInt32(&c.library), atomic.LoadInt32(&c.carousel), atomic.LoadInt32(&c.state)
}

func TestDebouncerRapidPagesCollapseToOne(t *testing.T) {
	var c topicCounter
	d := NewBroadcastDebouncer(50*time.Millisecond, c.callbacks())
	defer d.Stop()

	// A large container arrives as many pages
	for i := 0; i < 10; i++ {
		d.Trigger(string(events.EventItemsChanged))
	}
	d.Trigger(string(events.EventBrowseComplete))

	time.Sleep(100 * time.Millisecond)

	if lib, car, st := c.counts(); lib != 1 || car != 0 || st != 0 {
		t.Errorf("Expected 1 library push only, got library=%d carousel=%d state=%d", lib, car, st)
	}
}

func TestDebouncerTopicMapping(t *testing.T) {
	tests := []struct {
		trigger string
		library int32
		car     int32
		state   int32
	}{
		{string(events.EventSourcesChanged), 1, 0, 0},
		{string(events.EventSourceLost), 1, 0, 0},
		{string(events.EventViewChanged), 1, 0, 0},
		{string(events.EventCarouselChanged), 0, 1, 0},
		{string(events.EventPlayerIndex), 0, 1, 1},
		{"mixer", 0, 0, 1},
		{"database", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			var c topicCounter
			d := NewBroadcastDebouncer(10*time.Millisecond, c.callbacks())
			defer d.Stop()

			d.Trigger(tt.trigger)
			time.Sleep(50 * time.Millisecond)

			lib, car, st := c.counts()
			if lib != tt.library || car != tt.car || st != tt.state {
				t.Errorf("Expected %d/%d/%d, got %d/%d/%d", tt.library, tt.car, tt.state, lib, car, st)
			}
		})
	}
}

func TestDebouncerSeparateWindowsFireIndependently(t *testing.T) {
	var c topicCounter
	d := NewBroadcastDebouncer(50*time.Millisecond, c.callbacks())
	defer d.Stop()

	d.Trigger("player")
	time.Sleep(100 * time.Millisecond)
	d.Trigger("player")
	time.Sleep(100 * time.Millisecond)

	if _, _, st := c.counts(); st != 2 {
		t.Errorf("Expected 2 state callbacks for separate windows, got %d", st)
	}
}

func TestDebouncerStopPreventsCallbacks(t *testing.T) {
	var c topicCounter
	d := NewBroadcastDebouncer(50*time.Millisecond, c.callbacks())

	d.Trigger(string(events.EventItemsChanged))
	d.Stop()
	d.Trigger(string(events.EventItemsChanged))

	time.Sleep(100 * time.Millisecond)

	if lib, _, _ := c.counts(); lib != 0 {
		t.Errorf("Expected 0 library callbacks after stop, got %d", lib)
	}
}
