// Package config loads server configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/draftboard/internal/model"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Data    DataConfig    `yaml:"data"`
	Sleeper SleeperConfig `yaml:"sleeper"`
	Draft   DraftConfig   `yaml:"draft"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Type   string       `yaml:"type"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DataConfig points at the static data files produced by the converters
type DataConfig struct {
	RosterPath   string `yaml:"roster_path"`
	RankingsPath string `yaml:"rankings_path"`
}

type SleeperConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DraftConfig holds board defaults and poller settings
type DraftConfig struct {
	// DefaultDraftID creates a board on startup when no sessions exist
	DefaultDraftID string        `yaml:"default_draft_id"`
	DefaultFilter  string        `yaml:"default_filter"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	Favorites      []string      `yaml:"favorites"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second, // SSE streams reconnect after this
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: StorageTypeMemory,
			Redis: RedisConfig{
				PoolSize:     10,
				MinIdleConns: 2,
				SessionTTL:   7 * 24 * time.Hour,
				SnapshotTTL:  7 * 24 * time.Hour,
			},
			SQLite: SQLiteConfig{
				Path: "data/draftboard.db",
			},
		},
		Data: DataConfig{
			RosterPath:   "data/players.json",
			RankingsPath: "data/rankings.json",
		},
		Sleeper: SleeperConfig{
			BaseURL: "https://api.sleeper.app",
			Timeout: 10 * time.Second,
		},
		Draft: DraftConfig{
			PollInterval: 10 * time.Second,
			FetchTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("DRAFTBOARD_HOST", &c.Server.Host)
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}

	str("STORAGE_TYPE", &c.Storage.Type)
	str("REDIS_URL", &c.Storage.Redis.URL)
	str("DRAFTBOARD_SQLITE_PATH", &c.Storage.SQLite.Path)

	str("DRAFTBOARD_ROSTER_PATH", &c.Data.RosterPath)
	str("DRAFTBOARD_RANKINGS_PATH", &c.Data.RankingsPath)

	str("DRAFTBOARD_SLEEPER_URL", &c.Sleeper.BaseURL)

	str("DRAFTBOARD_DRAFT_ID", &c.Draft.DefaultDraftID)
	str("DRAFTBOARD_FILTER", &c.Draft.DefaultFilter)
	if err := dur("DRAFTBOARD_POLL_INTERVAL", &c.Draft.PollInterval); err != nil {
		return err
	}
	if err := dur("DRAFTBOARD_FETCH_TIMEOUT", &c.Draft.FetchTimeout); err != nil {
		return err
	}
	if v, ok := lookup("DRAFTBOARD_FAVORITES"); ok && v != "" {
		c.Draft.Favorites = splitList(v)
	}

	str("DRAFTBOARD_LOG_LEVEL", &c.Log.Level)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Storage.Redis.URL == "" {
			errs = append(errs, errors.New("storage.redis.url required when storage type is redis"))
		}
	case StorageTypeSQLite:
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path required when storage type is sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid storage type %q: must be memory, redis or sqlite", c.Storage.Type))
	}

	if c.Draft.PollInterval <= 0 {
		errs = append(errs, errors.New("draft.poll_interval must be positive"))
	}
	if c.Draft.FetchTimeout <= 0 {
		errs = append(errs, errors.New("draft.fetch_timeout must be positive"))
	}
	if c.Sleeper.Timeout < 0 {
		errs = append(errs, errors.New("sleeper.timeout must not be negative"))
	}
	if _, err := model.ParsePosition(c.Draft.DefaultFilter); err != nil {
		errs = append(errs, fmt.Errorf("draft.default_filter %q: %w", c.Draft.DefaultFilter, err))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses Log.Level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
