// Package main is the entry point for the Stellar library server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/artwork"
	"github.com/edumarques81/stellar-media-library/internal/config"
	"github.com/edumarques81/stellar-media-library/internal/domain/carousel"
	"github.com/edumarques81/stellar-media-library/internal/domain/localindex"
	"github.com/edumarques81/stellar-media-library/internal/domain/navigation"
	"github.com/edumarques81/stellar-media-library/internal/domain/player"
	"github.com/edumarques81/stellar-media-library/internal/domain/remote"
	"github.com/edumarques81/stellar-media-library/internal/events"
	"github.com/edumarques81/stellar-media-library/internal/infra/contentdb"
	"github.com/edumarques81/stellar-media-library/internal/infra/mpd"
	"github.com/edumarques81/stellar-media-library/internal/infra/upnp"
	"github.com/edumarques81/stellar-media-library/internal/transport/httpapi"
	"github.com/edumarques81/stellar-media-library/internal/transport/socketio"
	"github.com/edumarques81/stellar-media-library/internal/version"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "YAML config file (optional)")
	port := flag.String("port", "", "HTTP server port")
	mpdHost := flag.String("mpd-host", "", "MPD host")
	mpdPort := flag.Int("mpd-port", 0, "MPD port")
	mpdPassword := flag.String("mpd-password", "", "MPD password")
	source := flag.String("library-source", "", "Local library source: mpd or sqlite")
	dbPath := flag.String("db", "", "Content database path (sqlite source)")
	staticDir := flag.String("static", "", "Directory to serve static files from (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.HTTP.Port = *port
		case "static":
			cfg.HTTP.StaticDir = *staticDir
		case "mpd-host":
			cfg.MPD.Host = *mpdHost
		case "mpd-port":
			cfg.MPD.Port = *mpdPort
		case "mpd-password":
			cfg.MPD.Password = *mpdPassword
		case "library-source":
			cfg.Library.Source = *source
		case "db":
			cfg.Library.DBPath = *dbPath
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Media Library Server")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", cfg.HTTP.Port).
		Str("mpd_host", cfg.MPD.Host).
		Int("mpd_port", cfg.MPD.Port).
		Bool("password_set", cfg.MPD.Password != "").
		Str("library_source", cfg.Library.Source).
		Int("remote_servers", len(cfg.Remote.Servers)).
		Msg("Configuration")

	mpdClient := mpd.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
	if err := mpdClient.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MPD")
	}
	defer mpdClient.Close()

	if err := mpdClient.Ping(); err != nil {
		log.Fatal().Err(err).Msg("MPD ping failed")
	}
	log.Info().Msg("MPD connection verified")

	bus := events.NewBus()

	var collection localindex.CollectionSource
	switch cfg.Library.Source {
	case config.SourceSQLite:
		db := contentdb.NewDB(cfg.Library.DBPath)
		if err := db.Open(); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Library.DBPath).Msg("Failed to open content database")
		}
		defer db.Close()
		log.Info().Time("last_scan", db.LastScan()).Msg("Using content database")
		collection = db
	default:
		collection = mpd.NewCollection(mpdClient, cfg.Library.MusicRoot)
	}

	playerService := player.NewService(mpdClient, bus)
	carouselService := carousel.NewService(bus)
	remoteBrowser := remote.NewBrowser(bus, remote.WithStaleAfter(cfg.Remote.StaleAfter))
	scanner := upnp.NewScanner(&http.Client{Timeout: cfg.Remote.Timeout}, cfg.Remote.Servers)

	library := navigation.New(navigation.Deps{
		Index:        localindex.NewService(collection, bus),
		Remote:       remoteBrowser,
		Scanner:      scanner,
		Player:       playerService,
		Carousel:     carouselService,
		Bus:          bus,
		ScanInterval: cfg.Remote.ScanInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := library.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize library")
	}
	defer library.Dispose()

	socketServer, err := socketio.NewServer(library, playerService, carouselService, bus)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	socketServer.StartEventPump(ctx)
	if err := socketServer.StartMPDWatcher(ctx, mpdClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to start MPD watcher")
	}

	router := httpapi.NewRouter(httpapi.Options{
		Socket:    socketServer,
		MPD:       mpdClient,
		Artwork:   artwork.NewResolver(mpdClient, cfg.Library.ArtCacheDir),
		StaticDir: cfg.HTTP.StaticDir,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      corsMiddleware(cfg.HTTP.AllowOrigin, router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
