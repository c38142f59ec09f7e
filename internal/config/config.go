// Package config loads the server configuration from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Library source backends.
const (
	SourceMPD    = "mpd"
	SourceSQLite = "sqlite"
)

var (
	ErrUnknownSource   = errors.New("unknown library source")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInvalidPort     = errors.New("invalid port")
)

// Config is the process configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	MPD     MPDConfig     `yaml:"mpd"`
	Library LibraryConfig `yaml:"library"`
	Remote  RemoteConfig  `yaml:"remote"`
}

type HTTPConfig struct {
	Port        string `yaml:"port"`
	StaticDir   string `yaml:"static_dir"`
	AllowOrigin string `yaml:"allow_origin"`
}

type MPDConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
}

// LibraryConfig selects where the local collection comes from.
type LibraryConfig struct {
	Source      string `yaml:"source"`
	DBPath      string `yaml:"db_path"`
	MusicRoot   string `yaml:"music_root"`
	ArtCacheDir string `yaml:"art_cache_dir"`
}

// RemoteConfig configures media server discovery. Servers lists device
// description URLs.
type RemoteConfig struct {
	ScanInterval time.Duration `yaml:"scan_interval"`
	StaleAfter   time.Duration `yaml:"stale_after"`
	Timeout      time.Duration `yaml:"timeout"`
	Servers      []string      `yaml:"servers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Port: "3001", AllowOrigin: "*"},
		MPD:  MPDConfig{Host: "localhost", Port: 6600},
		Library: LibraryConfig{
			Source:      SourceMPD,
			DBPath:      "data/content.db",
			ArtCacheDir: "data/artwork",
		},
		Remote: RemoteConfig{
			ScanInterval: 5 * time.Second,
			StaleAfter:   10 * time.Second,
			Timeout:      5 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Library.Source {
	case SourceMPD, SourceSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Library.Source)
	}
	if c.MPD.Port <= 0 || c.MPD.Port > 65535 {
		return fmt.Errorf("%w: mpd.port %d", ErrInvalidPort, c.MPD.Port)
	}
	if c.Remote.ScanInterval <= 0 {
		return fmt.Errorf("%w: remote.scan_interval", ErrInvalidInterval)
	}
	if c.Remote.StaleAfter <= 0 {
		return fmt.Errorf("%w: remote.stale_after", ErrInvalidInterval)
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("%w: remote.timeout", ErrInvalidInterval)
	}
	return nil
}
