package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/draftboard/internal/api/request"
	"github.com/mcoot/draftboard/internal/api/response"
	"github.com/mcoot/draftboard/internal/api/stream"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/draft"
)

// SessionHandler handles session and board endpoints
type SessionHandler struct {
	controller *draft.Controller
	streamer   *stream.Streamer
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *draft.Controller, streamer *stream.Streamer) *SessionHandler {
	return &SessionHandler{
		controller: controller,
		streamer:   streamer,
	}
}

func sessionCode(r *http.Request) model.SessionCode {
	return model.SessionCode(mux.Vars(r)["code"])
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.controller.CreateSession(r.Context(), req.DraftID, req.Filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SessionListFromModel(h.controller.ListSessions(r.Context())))
}

// Get handles GET /api/v1/sessions/{code}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.controller.GetSession(r.Context(), sessionCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// Delete handles DELETE /api/v1/sessions/{code}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DeleteSession(r.Context(), sessionCode(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Board handles GET /api/v1/sessions/{code}/board
func (h *SessionHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.controller.Board(r.Context(), sessionCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BoardFromModel(board))
}

// Picks handles GET /api/v1/sessions/{code}/picks
func (h *SessionHandler) Picks(w http.ResponseWriter, r *http.Request) {
	board, err := h.controller.Board(r.Context(), sessionCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PickList{
		DraftID: string(board.DraftID),
		Picks:   response.PicksFromModel(board.Picks),
	})
}

// Available handles GET /api/v1/sessions/{code}/available.
// The position query parameter overrides the session's filter for this request only.
func (h *SessionHandler) Available(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	var board *model.Board
	var err error
	if position, ok := r.URL.Query()["position"]; ok {
		board, err = h.controller.BoardWithFilter(r.Context(), code, position[0])
	} else {
		board, err = h.controller.Board(r.Context(), code)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AvailableList{
		DraftID:   string(board.DraftID),
		Filter:    string(board.Filter),
		Available: response.AvailableFromModel(board.Available),
	})
}

// SetFilter handles PUT /api/v1/sessions/{code}/filter
func (h *SessionHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req request.SetFilterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	board, err := h.controller.SetFilter(r.Context(), sessionCode(r), req.Position)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BoardFromModel(board))
}

// ChangeDraft handles PUT /api/v1/sessions/{code}/draft
func (h *SessionHandler) ChangeDraft(w http.ResponseWriter, r *http.Request) {
	var req request.ChangeDraftRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	board, err := h.controller.ChangeDraft(r.Context(), sessionCode(r), req.DraftID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BoardFromModel(board))
}

// Refresh handles POST /api/v1/sessions/{code}/refresh.
// A failed fetch still answers 200; the board's status carries the error.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	board, err := h.controller.Refresh(r.Context(), sessionCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BoardFromModel(board))
}

// Stream handles GET /api/v1/sessions/{code}/ws
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	if _, err := h.controller.GetSession(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	h.streamer.Serve(w, r, code, func() (*model.Board, error) {
		return h.controller.Board(r.Context(), code)
	})
}
