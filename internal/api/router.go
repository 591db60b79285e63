package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/draftboard/internal/api/handler"
	"github.com/mcoot/draftboard/internal/api/middleware"
	"github.com/mcoot/draftboard/internal/api/stream"
	sharedmw "github.com/mcoot/draftboard/internal/middleware"
	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/services/rankings"
	"github.com/mcoot/draftboard/internal/services/roster"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	DraftController *draft.Controller
	RosterService   *roster.Service
	RankingsService *rankings.Service
	// Streamer serves websocket clients. It must be subscribed to DraftController.
	Streamer *stream.Streamer
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.DraftController, cfg.Streamer)
	dataHandler := handler.NewDataHandler(cfg.DraftController, cfg.RosterService, cfg.RankingsService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(sharedmw.Logging(cfg.Logger))

	api.HandleFunc("/health", dataHandler.Health).Methods(http.MethodGet)

	// Sessions
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{code}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{code}", sessionHandler.Delete).Methods(http.MethodDelete)

	// Board
	api.HandleFunc("/sessions/{code}/board", sessionHandler.Board).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{code}/picks", sessionHandler.Picks).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{code}/available", sessionHandler.Available).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{code}/filter", sessionHandler.SetFilter).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{code}/draft", sessionHandler.ChangeDraft).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{code}/refresh", sessionHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{code}/ws", sessionHandler.Stream).Methods(http.MethodGet)

	// Static data
	api.HandleFunc("/roster/{id}", dataHandler.Player).Methods(http.MethodGet)
	api.HandleFunc("/rankings", dataHandler.Rankings).Methods(http.MethodGet)

	return r
}
