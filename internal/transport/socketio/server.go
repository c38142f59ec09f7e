// Package socketio provides the Socket.io server for library clients.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
	"github.com/edumarques81/stellar-media-library/internal/domain/navigation"
	"github.com/edumarques81/stellar-media-library/internal/events"
)

// Push event names.
const (
	PushLibrary  = "pushLibrary"
	PushCarousel = "pushCarousel"
	PushState    = "pushState"
)

const broadcastWindow = 50 * time.Millisecond

// Library is the navigation surface driven by clients.
type Library interface {
	View() navigation.View
	RenderTab(index int) error
	SelectLocal(index int) error
	GoBackLocal() error
	SelectRemoteSource(id string) error
	SelectRemote(index int) error
	SelectRemoteContainer(index int) error
	GoBackRemote() error
	SetAlphabetFilter(letter string)
	SetVisible(visible bool)
}

// Player is the playback surface driven by clients.
type Player interface {
	GetState() (map[string]interface{}, error)
	SyncIndex() error
	Play(index int) error
	Pause() error
	Stop() error
	Next() error
	Previous() error
}

// Carousel is the audio carousel surface driven by clients.
type Carousel interface {
	Swiped(index int)
	Index() int
	Items() []*media.Entity
}

// Watcher reports changed MPD subsystems.
type Watcher interface {
	Watch(ctx context.Context, subsystems ...string) (<-chan string, error)
}

// Server handles Socket.io connections and events.
type Server struct {
	io        *socket.Server
	library   Library
	player    Player
	carousel  Carousel
	bus       *events.Bus
	debouncer *BroadcastDebouncer
	commands  map[string]command

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server.
func NewServer(library Library, player Player, carousel Carousel, bus *events.Bus) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:       socket.NewServer(nil, opts),
		library:  library,
		player:   player,
		carousel: carousel,
		bus:      bus,
		clients:  make(map[string]*socket.Socket),
	}
	s.commands = s.buildCommands()
	s.debouncer = NewBroadcastDebouncer(broadcastWindow, map[Topic]func(){
		TopicLibrary:  s.BroadcastLibrary,
		TopicCarousel: s.BroadcastCarousel,
		TopicState:    s.BroadcastState,
	})

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial views after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.push(client, PushLibrary)
			s.push(client, PushCarousel)
			s.push(client, PushState)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		for name := range s.commands {
			name := name
			client.On(name, func(args ...any) {
				log.Debug().Str("id", clientID).Interface("data", args).Msg(name)
				if reply := s.Dispatch(name, args...); reply != "" {
					s.push(client, reply)
				}
			})
		}
	})
}

// payload returns the current body of a push event.
func (s *Server) payload(event string) (any, bool) {
	switch event {
	case PushLibrary:
		return s.library.View(), true
	case PushCarousel:
		return map[string]interface{}{
			"index": s.carousel.Index(),
			"items": s.carousel.Items(),
		}, true
	case PushState:
		state, err := s.player.GetState()
		if err != nil {
			log.Error().Err(err).Msg("Failed to get state")
			return nil, false
		}
		return state, true
	}
	return nil, false
}

func (s *Server) push(client *socket.Socket, event string) {
	if data, ok := s.payload(event); ok {
		client.Emit(event, data)
	}
}

func (s *Server) broadcast(event string) {
	data, ok := s.payload(event)
	if !ok {
		return
	}
	s.io.Emit(event, data)

	if log.Debug().Enabled() {
		raw, _ := json.Marshal(data)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().Str("event", event).Int("bytes", len(raw)).Int("clients", clientCount).Msg("Broadcast")
	}
}

// BroadcastLibrary sends the library view to all connected clients.
func (s *Server) BroadcastLibrary() { s.broadcast(PushLibrary) }

// BroadcastCarousel sends the carousel position to all connected clients.
func (s *Server) BroadcastCarousel() { s.broadcast(PushCarousel) }

// BroadcastState sends player state to all connected clients.
func (s *Server) BroadcastState() { s.broadcast(PushState) }

// StartEventPump forwards library bus events to the broadcast debouncer
// until ctx is done.
func (s *Server) StartEventPump(ctx context.Context) {
	sub := s.bus.Subscribe(
		events.EventSourcesChanged,
		events.EventSourceLost,
		events.EventItemsChanged,
		events.EventBrowseComplete,
		events.EventBrowseFailed,
		events.EventLocalLoaded,
		events.EventViewChanged,
		events.EventCarouselChanged,
		events.EventPlayerIndex,
	)

	go func() {
		defer s.bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-sub:
				if !ok {
					return
				}
				if name, ok := p["event"].(string); ok {
					s.debouncer.Trigger(name)
				}
			}
		}
	}()
}

// StartMPDWatcher watches MPD for changes, syncs the player index and
// broadcasts updates.
func (s *Server) StartMPDWatcher(ctx context.Context, watcher Watcher) error {
	subsystems := []string{"player", "mixer", "playlist", "options"}
	changes, err := watcher.Watch(ctx, subsystems...)
	if err != nil {
		return err
	}

	go func() {
		log.Info().Strs("subsystems", subsystems).Msg("MPD watcher started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("MPD watcher stopped")
				return
			case subsystem, ok := <-changes:
				if !ok {
					log.Warn().Msg("MPD watcher channel closed")
					return
				}
				log.Debug().Str("subsystem", subsystem).Msg("MPD subsystem changed")
				s.HandleSubsystem(subsystem)
			}
		}
	}()

	return nil
}

// HandleSubsystem reacts to one MPD subsystem change.
func (s *Server) HandleSubsystem(subsystem string) {
	if subsystem == "player" || subsystem == "playlist" {
		if err := s.player.SyncIndex(); err != nil {
			log.Warn().Err(err).Msg("Failed to sync player index")
		}
	}
	s.debouncer.Trigger(subsystem)
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close stops pending broadcasts and closes the Socket.io server.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}
