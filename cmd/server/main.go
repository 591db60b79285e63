package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/draftboard/internal/api"
	"github.com/mcoot/draftboard/internal/config"
	"github.com/mcoot/draftboard/internal/factory"
	"github.com/mcoot/draftboard/internal/web"
)

func main() {
	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("could not read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.LookupEnv, os.Stdout)
	cancel()
	os.Exit(code)
}

// run serves until ctx is done or the server fails and returns the process
// exit code. Every deferred cleanup has run by the time it returns.
func run(ctx context.Context, lookupEnv func(string) (string, bool), stdout io.Writer) int {
	configPath, _ := lookupEnv("DRAFTBOARD_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("could not load config", slog.String("error", err.Error()))
		return 1
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		slog.Error("invalid environment", slog.String("error", err.Error()))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		return 1
	}

	// Set up logging with JSON output
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Missing data leaves the board degraded, not down
	if err := app.LoadData(ctx, cfg.Data.RosterPath, cfg.Data.RankingsPath); err != nil {
		logger.Warn("could not load player data", slog.String("error", err.Error()))
	}

	// Resume stored sessions and start polling
	if err := app.DraftController.Start(ctx); err != nil {
		logger.Error("failed to start draft controller", slog.String("error", err.Error()))
		return 1
	}
	defer app.DraftController.Stop()

	if cfg.Draft.DefaultDraftID != "" && len(app.DraftController.ListSessions(ctx)) == 0 {
		s, err := app.DraftController.CreateSession(ctx, cfg.Draft.DefaultDraftID, cfg.Draft.DefaultFilter)
		if err != nil {
			logger.Warn("could not create default board",
				slog.String("draft_id", cfg.Draft.DefaultDraftID),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("created default board",
				slog.String("session_code", string(s.Code)),
				slog.String("draft_id", string(s.DraftID)),
			)
		}
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		DraftController: app.DraftController,
		RosterService:   app.RosterService,
		RankingsService: app.RankingsService,
		Streamer:        app.Streamer,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:          logger,
		DraftController: app.DraftController,
		HubManager:      app.HubManager,
		DefaultDraftID:  cfg.Draft.DefaultDraftID,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, api.ServerConfigFrom(cfg.Server), logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}
