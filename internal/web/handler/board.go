package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/web/middleware"
	"github.com/mcoot/draftboard/internal/web/sse"
	"github.com/mcoot/draftboard/internal/web/templates/components"
	"github.com/mcoot/draftboard/internal/web/templates/layout"
	"github.com/mcoot/draftboard/internal/web/templates/pages"
)

// BoardHandler handles board pages and the board controls
type BoardHandler struct {
	controller *draft.Controller
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(controller *draft.Controller, hubManager *sse.HubManager, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{
		controller: controller,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "web-board")),
	}
}

func boardPath(code model.SessionCode) string {
	return "/board/" + string(code)
}

func sessionCode(r *http.Request) model.SessionCode {
	return model.SessionCode(mux.Vars(r)["code"])
}

// userMessage turns a controller error into text for a flash message
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidDraftID):
		return "Please enter a valid draft ID"
	case errors.Is(err, model.ErrInvalidPosition):
		return "Unknown position"
	case errors.Is(err, model.ErrSessionNotFound):
		return "Board not found"
	default:
		return "Something went wrong"
	}
}

// Create opens a new board
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/", "error", "Invalid form data")
		return
	}

	session, err := h.controller.CreateSession(r.Context(), r.FormValue("draft_id"), r.FormValue("position"))
	if err != nil {
		if !errors.Is(err, model.ErrInvalidDraftID) && !errors.Is(err, model.ErrInvalidPosition) {
			h.logger.Error("failed to create board", slog.Any("error", err))
		}
		redirectWithFlash(w, r, "/", "error", "Could not open board: "+userMessage(err))
		return
	}

	redirectWithFlash(w, r, boardPath(session.Code), "success", "Board opened!")
}

// View renders a board page
func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	board, err := h.controller.Board(r.Context(), code)
	if err != nil {
		redirectWithFlash(w, r, "/", "error", userMessage(err))
		return
	}

	data := pages.BoardData{
		PageData: layout.PageData{
			Title: components.Title(board),
			Flash: middleware.GetFlash(r.Context()),
		},
		Board: board,
	}
	renderPage(w, r, http.StatusOK, pages.Board(data))
}

// respondBoard answers a control: the refreshed board fragment for HTMX,
// otherwise a redirect back to the board page
func (h *BoardHandler) respondBoard(w http.ResponseWriter, r *http.Request, board *model.Board, message string) {
	if isHTMX(r) {
		renderPage(w, r, http.StatusOK, components.BoardContent(board))
		return
	}
	redirectWithFlash(w, r, boardPath(board.SessionCode), "success", message)
}

func (h *BoardHandler) controlFailed(w http.ResponseWriter, r *http.Request, code model.SessionCode, err error) {
	if errors.Is(err, model.ErrSessionNotFound) {
		redirectWithFlash(w, r, "/", "error", userMessage(err))
		return
	}
	redirectWithFlash(w, r, boardPath(code), "error", userMessage(err))
}

// SetFilter changes the board's position filter
func (h *BoardHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, boardPath(code), "error", "Invalid form data")
		return
	}

	board, err := h.controller.SetFilter(r.Context(), code, r.FormValue("position"))
	if err != nil {
		h.controlFailed(w, r, code, err)
		return
	}

	message := "Showing all positions"
	if board.Filter != "" {
		message = "Showing " + string(board.Filter) + " only"
	}
	h.respondBoard(w, r, board, message)
}

// ChangeDraft points the board at another draft
func (h *BoardHandler) ChangeDraft(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, boardPath(code), "error", "Invalid form data")
		return
	}

	board, err := h.controller.ChangeDraft(r.Context(), code, r.FormValue("draft_id"))
	if err != nil {
		h.controlFailed(w, r, code, err)
		return
	}
	h.respondBoard(w, r, board, "Now following draft "+string(board.DraftID))
}

// Refresh fetches the draft now
func (h *BoardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	board, err := h.controller.Refresh(r.Context(), code)
	if err != nil {
		h.controlFailed(w, r, code, err)
		return
	}
	h.respondBoard(w, r, board, "Board refreshed")
}

// Delete closes a board
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	if err := h.controller.DeleteSession(r.Context(), code); err != nil {
		h.controlFailed(w, r, code, err)
		return
	}
	redirectWithFlash(w, r, "/", "success", "Board "+string(code)+" deleted")
}

// Events streams board updates over SSE
func (h *BoardHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	if _, err := h.controller.GetSession(r.Context(), code); err != nil {
		http.Error(w, "Board not found", http.StatusNotFound)
		return
	}

	hub := h.hubManager.GetOrCreateHub(code)
	sse.ServeSSE(w, r, hub)
}
