// Command mediascan walks media directories, reads tags and fills the
// content database used by the sqlite library source.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edumarques81/stellar-media-library/internal/infra/contentdb"
)

var (
	roots   []string
	dbPath  string
	prefix  string
	workers int
	prune   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mediascan",
	Short: "Index local media files into the content database",
	Long: `mediascan walks media directories, reads audio tags and stores one row per
audio or video file in the content database. URIs are stored relative to the
scanned root, optionally under --prefix, so MPD can queue them directly.

Examples:
  mediascan --dir /srv/music --db data/content.db
  mediascan --dir /mnt/nas/video --prefix NAS --no-prune`,
	RunE: runScan,
}

func init() {
	rootCmd.Flags().StringArrayVar(&roots, "dir", nil, "Media directory to scan (required, repeatable)")
	rootCmd.Flags().StringVar(&dbPath, "db", contentdb.DefaultDBPath, "Content database path")
	rootCmd.Flags().StringVar(&prefix, "prefix", "", "URI prefix prepended to relative paths")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 4, "Parallel tag readers")
	rootCmd.Flags().BoolVar(&prune, "prune", true, "Remove database rows for files no longer found")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.MarkFlagRequired("dir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db := contentdb.NewDB(dbPath)
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to open content database: %w", err)
	}
	defer db.Close()

	s := &scanner{roots: roots, prefix: prefix, workers: workers}
	log.Info().Strs("dirs", roots).Int("workers", s.workers).Msg("Scanning")

	result, err := s.scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := db.Upsert(ctx, result.Items); err != nil {
		return fmt.Errorf("failed to store items: %w", err)
	}

	removed := 0
	if prune && ctx.Err() == nil {
		keep := make(map[string]bool, len(result.Items))
		for _, it := range result.Items {
			keep[it.URI] = true
		}
		if removed, err = db.RemoveMissing(ctx, keep); err != nil {
			return fmt.Errorf("failed to prune items: %w", err)
		}
	}

	if err := db.MarkScanComplete(time.Now()); err != nil {
		return err
	}

	counts, _ := db.Count(ctx)
	log.Info().
		Int("files", len(result.Items)).
		Int("untagged", result.Untagged).
		Int("errors", result.Errors).
		Int("removed", removed).
		Interface("indexed", counts).
		Dur("took", result.Duration).
		Msg("Scan complete")
	return nil
}
