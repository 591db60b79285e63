package handler

import (
	"net/http"

	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/web/middleware"
	"github.com/mcoot/draftboard/internal/web/templates/layout"
	"github.com/mcoot/draftboard/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct {
	controller     *draft.Controller
	defaultDraftID string
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(controller *draft.Controller, defaultDraftID string) *HomeHandler {
	return &HomeHandler{
		controller:     controller,
		defaultDraftID: defaultDraftID,
	}
}

// Home renders the list of open boards and the new board form
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData: layout.PageData{
			Title: "Home",
			Flash: middleware.GetFlash(r.Context()),
		},
		Sessions:       h.controller.ListSessions(r.Context()),
		DefaultDraftID: h.defaultDraftID,
	}

	renderPage(w, r, http.StatusOK, pages.Home(data))
}
