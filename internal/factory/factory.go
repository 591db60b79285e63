package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/draftboard/internal/api/stream"
	"github.com/mcoot/draftboard/internal/config"
	"github.com/mcoot/draftboard/internal/dependencies/clock"
	"github.com/mcoot/draftboard/internal/dependencies/random"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/services/rankings"
	"github.com/mcoot/draftboard/internal/services/roster"
	"github.com/mcoot/draftboard/internal/sleeper"
	"github.com/mcoot/draftboard/internal/storage"
	"github.com/mcoot/draftboard/internal/storage/memory"
	redisstorage "github.com/mcoot/draftboard/internal/storage/redis"
	sqlitestorage "github.com/mcoot/draftboard/internal/storage/sqlite"
	"github.com/mcoot/draftboard/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageTypeMemory
	StorageTypeRedis  = config.StorageTypeRedis
	StorageTypeSQLite = config.StorageTypeSQLite
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock         clock.Clock
	Random        random.Random
	SleeperClient sleeper.Client

	// Services
	RosterService   *roster.Service
	RankingsService *rankings.Service
	DraftController *draft.Controller
	HubManager      *sse.HubManager
	Streamer        *stream.Streamer

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Sleeper configures the draft source client
	// If BaseURL is empty, defaults to sleeper.DefaultConfig()
	Sleeper sleeper.Config
	// Draft holds poller settings and favorites
	Draft draft.Config
	// RosterPath and RankingsPath are loaded by LoadData (optional)
	RosterPath   string
	RankingsPath string
}

// FromConfig builds a factory Config from the server configuration
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Storage.Redis.URL
	if cfg.Storage.Redis.PoolSize > 0 {
		redisCfg.PoolSize = cfg.Storage.Redis.PoolSize
	}
	if cfg.Storage.Redis.MinIdleConns > 0 {
		redisCfg.MinIdleConns = cfg.Storage.Redis.MinIdleConns
	}
	if cfg.Storage.Redis.SessionTTL > 0 {
		redisCfg.SessionTTL = cfg.Storage.Redis.SessionTTL
	}
	if cfg.Storage.Redis.SnapshotTTL > 0 {
		redisCfg.SnapshotTTL = cfg.Storage.Redis.SnapshotTTL
	}

	return Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RedisConfig: &redisCfg,
		SQLitePath:  cfg.Storage.SQLite.Path,
		Sleeper: sleeper.Config{
			BaseURL: cfg.Sleeper.BaseURL,
			Timeout: cfg.Sleeper.Timeout,
		},
		Draft: draft.Config{
			PollInterval: cfg.Draft.PollInterval,
			FetchTimeout: cfg.Draft.FetchTimeout,
			Favorites:    cfg.Draft.Favorites,
		},
		RosterPath:   cfg.Data.RosterPath,
		RankingsPath: cfg.Data.RankingsPath,
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closers []io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil || cfg.RedisConfig.URL == "" {
			return nil, errors.New("RedisConfig with URL required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
		closers = append(closers, sqliteStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}

	sleeperCfg := cfg.Sleeper
	if sleeperCfg.BaseURL == "" {
		sleeperCfg.BaseURL = sleeper.DefaultConfig().BaseURL
	}
	if sleeperCfg.Timeout == 0 {
		sleeperCfg.Timeout = sleeper.DefaultConfig().Timeout
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	client := sleeper.New(sleeperCfg)

	app := newWithDependencies(store, clk, rnd, client, cfg.Draft, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, client sleeper.Client, draftCfg draft.Config, logger *slog.Logger) *App {
	rosterService := roster.New(store, logger)
	rankingsService := rankings.New(store, logger)
	draftController := draft.NewController(store, client, rosterService, rankingsService, clk, rnd, logger, draftCfg)
	hubManager := sse.NewHubManager(logger)
	streamer := stream.New(logger)

	// Board pages follow every refresh through SSE, API clients through websockets
	draftController.Subscribe(sse.NewBroadcaster(hubManager, logger))
	draftController.Subscribe(streamer)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		SleeperClient:   client,
		RosterService:   rosterService,
		RankingsService: rankingsService,
		DraftController: draftController,
		HubManager:      hubManager,
		Streamer:        streamer,
	}
}

// LoadData loads the roster and rankings independently. A file that is
// missing or fails to load falls back to the copy saved in storage by an
// earlier run; with neither that view runs degraded. Errors from both loads
// are joined.
func (a *App) LoadData(ctx context.Context, rosterPath, rankingsPath string) error {
	var errs []error

	if rosterPath != "" {
		if err := a.RosterService.LoadFromFile(ctx, rosterPath); err != nil {
			errs = append(errs, fmt.Errorf("load roster: %w", err))
		}
	}
	if !a.RosterService.IsLoaded() {
		if err := a.RosterService.LoadFromStorage(ctx); err != nil && !errors.Is(err, model.ErrRosterNotLoaded) {
			errs = append(errs, fmt.Errorf("load stored roster: %w", err))
		}
	}

	if rankingsPath != "" {
		if err := a.RankingsService.LoadFromFile(ctx, rankingsPath); err != nil {
			errs = append(errs, fmt.Errorf("load rankings: %w", err))
		}
	}
	if !a.RankingsService.IsLoaded() {
		if err := a.RankingsService.LoadFromStorage(ctx); err != nil && !errors.Is(err, model.ErrRankingsNotLoaded) {
			errs = append(errs, fmt.Errorf("load stored rankings: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Close releases storage connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
