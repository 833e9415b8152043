// Package config loads server and player settings from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

// Catalog sources.
const (
	CatalogStatic   = "static"
	CatalogSpotify  = "spotify"
	CatalogPostgres = "postgres"
	CatalogLastfm   = "lastfm"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration.
type Config struct {
	Addr        string        `yaml:"addr"`
	DatabaseURL string        `yaml:"database_url"`
	Log         LogConfig     `yaml:"log"`
	Store       StoreConfig   `yaml:"store"`
	Catalog     CatalogConfig `yaml:"catalog"`
	Spotify     SpotifyConfig `yaml:"spotify"`
	Lastfm      LastfmConfig  `yaml:"lastfm"`
	Player      PlayerConfig  `yaml:"player"`
	Profiles    ProfileConfig `yaml:"profiles"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
	File  string `yaml:"file"`
}

// StoreConfig selects where profile state is persisted.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
}

// CatalogConfig controls recommendations.
type CatalogConfig struct {
	Source      string        `yaml:"source"`
	PerGenre    int           `yaml:"per_genre"`
	Concurrency int           `yaml:"concurrency"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	Mixes       int           `yaml:"mixes"`
}

// SpotifyConfig holds client credentials.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// LastfmConfig holds the Last.fm API key.
type LastfmConfig struct {
	APIKey string `yaml:"api_key"`
}

// PlayerConfig holds state machine timings.
type PlayerConfig struct {
	DetectionDelay time.Duration `yaml:"detection_delay"`
	TrackDuration  int           `yaml:"track_duration"` // seconds
	TickInterval   time.Duration `yaml:"tick_interval"`
	Camera         bool          `yaml:"camera"` // whether the simulated camera grants access
}

// ProfileConfig controls browser profiles.
type ProfileConfig struct {
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			DataDir: "data",
		},
		Catalog: CatalogConfig{
			Source:      CatalogStatic,
			PerGenre:    6,
			Concurrency: 4,
			CacheTTL:    30 * time.Minute,
			Mixes:       4,
		},
		Player: PlayerConfig{
			DetectionDelay: 3 * time.Second,
			TrackDuration:  225,
			TickInterval:   time.Second,
			Camera:         true,
		},
		Profiles: ProfileConfig{
			IdleTTL: 24 * time.Hour,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is not
// empty) and then with environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = envStr("TUNEAURA_ADDR", c.Addr)
	c.DatabaseURL = envStr("DATABASE_URL", c.DatabaseURL)

	c.Log.Level = envStr("TUNEAURA_LOG_LEVEL", c.Log.Level)
	c.Log.File = envStr("TUNEAURA_LOG_FILE", c.Log.File)

	c.Store.Backend = envStr("TUNEAURA_STORE", c.Store.Backend)
	c.Store.DataDir = envStr("TUNEAURA_DATA_DIR", c.Store.DataDir)

	c.Catalog.Source = envStr("TUNEAURA_CATALOG", c.Catalog.Source)

	c.Spotify.ClientID = envStr("SPOTIFY_ID", c.Spotify.ClientID)
	c.Spotify.ClientSecret = envStr("SPOTIFY_SECRET", c.Spotify.ClientSecret)
	c.Lastfm.APIKey = envStr("LASTFM_API_KEY", c.Lastfm.APIKey)

	var err error
	if c.Log.Dev, err = envBool("TUNEAURA_DEV", c.Log.Dev); err != nil {
		return err
	}
	if c.Player.Camera, err = envBool("TUNEAURA_CAMERA", c.Player.Camera); err != nil {
		return err
	}
	if c.Catalog.PerGenre, err = envInt("TUNEAURA_RECOMMENDATIONS", c.Catalog.PerGenre); err != nil {
		return err
	}
	if c.Player.TrackDuration, err = envInt("TUNEAURA_TRACK_DURATION", c.Player.TrackDuration); err != nil {
		return err
	}
	if c.Player.DetectionDelay, err = envDuration("TUNEAURA_DETECTION_DELAY", c.Player.DetectionDelay); err != nil {
		return err
	}
	if c.Profiles.IdleTTL, err = envDuration("TUNEAURA_PROFILE_TTL", c.Profiles.IdleTTL); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if !slices.Contains([]string{StoreMemory, StoreFile, StoreBadger, StorePostgres}, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if (c.Store.Backend == StoreFile || c.Store.Backend == StoreBadger) && c.Store.DataDir == "" {
		errs = append(errs, fmt.Errorf("store backend %s needs a data dir", c.Store.Backend))
	}
	if !slices.Contains([]string{CatalogStatic, CatalogSpotify, CatalogPostgres, CatalogLastfm}, c.Catalog.Source) {
		errs = append(errs, fmt.Errorf("unknown catalog source %q", c.Catalog.Source))
	}
	if c.NeedsDatabase() && c.DatabaseURL == "" {
		errs = append(errs, errors.New("postgres needs DATABASE_URL"))
	}
	if c.Catalog.Source == CatalogSpotify && (c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "") {
		errs = append(errs, errors.New("spotify catalog needs SPOTIFY_ID and SPOTIFY_SECRET"))
	}
	if c.Catalog.Source == CatalogLastfm && c.Lastfm.APIKey == "" {
		errs = append(errs, errors.New("lastfm catalog needs LASTFM_API_KEY"))
	}
	if c.Catalog.PerGenre <= 0 || c.Catalog.Concurrency <= 0 || c.Catalog.Mixes <= 0 {
		errs = append(errs, errors.New("catalog counts must be positive"))
	}
	if c.Player.DetectionDelay <= 0 || c.Player.TickInterval <= 0 || c.Player.TrackDuration <= 0 {
		errs = append(errs, errors.New("player timings must be positive"))
	}
	if c.Profiles.IdleTTL <= 0 {
		errs = append(errs, errors.New("profile idle ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// NeedsDatabase reports whether any component uses PostgreSQL.
func (c *Config) NeedsDatabase() bool {
	return c.Store.Backend == StorePostgres || c.Catalog.Source == CatalogPostgres
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "allow", "on", "yes":
		return true, nil
	case "deny", "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, v)
	}
	return b, nil
}

// envDuration accepts Go durations ("1500ms") or plain seconds ("3").
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalid, key, v)
	}
	return d, nil
}
