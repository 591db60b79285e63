package request

// CreateSessionRequest is the request body for opening a board
type CreateSessionRequest struct {
	DraftID string `json:"draft_id"`
	Filter  string `json:"filter,omitempty"`
}

// SetFilterRequest is the request body for changing a board's position filter.
// An empty position clears the filter.
type SetFilterRequest struct {
	Position string `json:"position"`
}

// ChangeDraftRequest is the request body for pointing a board at another draft
type ChangeDraftRequest struct {
	DraftID string `json:"draft_id"`
}
