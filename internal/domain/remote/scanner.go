package remote

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scan evicts expired sources and then runs one discovery round.
func (b *Browser) Scan(ctx context.Context, scanner Scanner) error {
	b.EvictStale(b.now())
	if scanner == nil {
		return nil
	}
	return scanner.ScanNetwork(ctx, b.Discover)
}

// RunScanner scans every interval until ctx is done. Ticks where active
// reports false are skipped.
func (b *Browser) RunScanner(ctx context.Context, scanner Scanner, interval time.Duration, active func() bool) {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", interval).Msg("Media source scanner started")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Media source scanner stopped")
			return
		case <-ticker.C:
			if active != nil && !active() {
				continue
			}
			if err := b.Scan(ctx, scanner); err != nil {
				log.Warn().Err(err).Msg("Media source scan failed")
			}
		}
	}
}
