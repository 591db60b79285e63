package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/draftboard/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidDraftID    = "INVALID_DRAFT_ID"
	CodeInvalidPosition   = "INVALID_POSITION"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeSnapshotNotFound  = "SNAPSHOT_NOT_FOUND"
	CodeRosterNotLoaded   = "ROSTER_NOT_LOADED"
	CodeRankingsNotLoaded = "RANKINGS_NOT_LOADED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrSnapshotNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSnapshotNotFound, "No picks fetched yet"}}
	case errors.Is(err, model.ErrInvalidDraftID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDraftID, "Draft id must be a non-empty identifier"}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Position must be one of QB, RB, WR, TE, K, DEF"}}
	case errors.Is(err, model.ErrRosterNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeRosterNotLoaded, "Roster is not loaded"}}
	case errors.Is(err, model.ErrRankingsNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeRankingsNotLoaded, "Rankings are not loaded"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
