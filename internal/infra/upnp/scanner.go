package upnp

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/remote"
)

// Scanner reports the media servers behind a fixed list of device
// description URLs. Servers that fail to answer are skipped for that round.
type Scanner struct {
	http      *http.Client
	locations []string
}

// NewScanner creates a scanner over locations.
func NewScanner(httpClient *http.Client, locations []string) *Scanner {
	return &Scanner{http: httpClient, locations: locations}
}

// ScanNetwork describes every location and calls found for each server
// that answered.
func (s *Scanner) ScanNetwork(ctx context.Context, found func(remote.Source)) error {
	for _, location := range s.locations {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := Describe(ctx, s.http, location)
		if err != nil {
			log.Debug().Err(err).Str("location", location).Msg("Media server did not answer")
			continue
		}
		found(src)
	}
	return nil
}
