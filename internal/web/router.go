package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	sharedmw "github.com/mcoot/draftboard/internal/middleware"
	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/web/handler"
	"github.com/mcoot/draftboard/internal/web/middleware"
	"github.com/mcoot/draftboard/internal/web/sse"
)

//go:embed static
var staticFiles embed.FS

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	DraftController *draft.Controller
	HubManager      *sse.HubManager
	// DefaultDraftID prefills the new board form
	DefaultDraftID string
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(sharedmw.Logging(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	homeHandler := handler.NewHomeHandler(cfg.DraftController, cfg.DefaultDraftID)
	boardHandler := handler.NewBoardHandler(cfg.DraftController, hubManager, cfg.Logger)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// SSE stays outside the flash middleware so the stream never consumes a flash
	r.HandleFunc("/board/{code}/events", boardHandler.Events).Methods(http.MethodGet)

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/board", boardHandler.Create).Methods(http.MethodPost)
	pages.HandleFunc("/board/{code}", boardHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/board/{code}/filter", boardHandler.SetFilter).Methods(http.MethodPost)
	pages.HandleFunc("/board/{code}/draft", boardHandler.ChangeDraft).Methods(http.MethodPost)
	pages.HandleFunc("/board/{code}/refresh", boardHandler.Refresh).Methods(http.MethodPost)
	pages.HandleFunc("/board/{code}/delete", boardHandler.Delete).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	return r
}
