package socketio

import (
	"github.com/rs/zerolog/log"
)

// command handles one client event and names the push to send back to the
// caller, if any.
type command func(args []any) (reply string, err error)

func (s *Server) buildCommands() map[string]command {
	return map[string]command{
		"getLibrary": func(args []any) (string, error) {
			return PushLibrary, nil
		},
		"selectTab": func(args []any) (string, error) {
			index, ok := intArg(args, "index")
			if !ok {
				return "", errBadArgs
			}
			return PushLibrary, s.library.RenderTab(index)
		},
		"selectLocal": func(args []any) (string, error) {
			index, ok := intArg(args, "index")
			if !ok {
				return "", errBadArgs
			}
			return PushLibrary, s.library.SelectLocal(index)
		},
		"backLocal": func(args []any) (string, error) {
			return PushLibrary, s.library.GoBackLocal()
		},
		"selectSource": func(args []any) (string, error) {
			id, ok := stringArg(args, "id")
			if !ok {
				return "", errBadArgs
			}
			return PushLibrary, s.library.SelectRemoteSource(id)
		},
		"selectRemote": func(args []any) (string, error) {
			index, ok := intArg(args, "index")
			if !ok {
				return "", errBadArgs
			}
			return PushLibrary, s.library.SelectRemote(index)
		},
		"selectContainer": func(args []any) (string, error) {
			index, ok := intArg(args, "index")
			if !ok {
				return "", errBadArgs
			}
			return PushLibrary, s.library.SelectRemoteContainer(index)
		},
		"backRemote": func(args []any) (string, error) {
			return PushLibrary, s.library.GoBackRemote()
		},
		"alphabet": func(args []any) (string, error) {
			letter, ok := stringArg(args, "letter")
			if !ok {
				return "", errBadArgs
			}
			s.library.SetAlphabetFilter(letter)
			return PushLibrary, nil
		},
		"carouselSwipe": func(args []any) (string, error) {
			index, ok := intArg(args, "index")
			if !ok {
				return "", errBadArgs
			}
			s.carousel.Swiped(index)
			return PushCarousel, nil
		},
		"setVisible": func(args []any) (string, error) {
			visible, ok := boolArg(args, "value")
			if !ok {
				return "", errBadArgs
			}
			s.library.SetVisible(visible)
			return "", nil
		},
		"getState": func(args []any) (string, error) {
			return PushState, nil
		},
		"play": func(args []any) (string, error) {
			pos := -1 // Default: resume
			if v, ok := intArg(args, "value"); ok {
				pos = v
			}
			return PushState, s.player.Play(pos)
		},
		"pause": func(args []any) (string, error) {
			return PushState, s.player.Pause()
		},
		"stop": func(args []any) (string, error) {
			return PushState, s.player.Stop()
		},
		"next": func(args []any) (string, error) {
			return PushState, s.player.Next()
		},
		"prev": func(args []any) (string, error) {
			return PushState, s.player.Previous()
		},
	}
}

// Dispatch runs the named client event. Domain errors are logged and the
// current view is still pushed back so the client can resync.
func (s *Server) Dispatch(event string, args ...any) (reply string) {
	cmd, ok := s.commands[event]
	if !ok {
		log.Warn().Str("event", event).Msg("Unknown client event")
		return ""
	}

	reply, err := cmd(args)
	if err == errBadArgs {
		log.Warn().Str("event", event).Interface("data", args).Msg("Invalid event payload")
		return ""
	}
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("Client event failed")
	}
	return reply
}
