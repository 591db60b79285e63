package model

import "time"

// SessionCode is a short human-readable identifier for a draft board session
type SessionCode string

// RefreshState is where a session's refresh cycle currently is
type RefreshState string

const (
	RefreshStateIdle     RefreshState = "idle"
	RefreshStateFetching RefreshState = "fetching"
)

// Session is one user's view of one draft: which draft to poll and how to filter it.
// Runtime fields (State, Generation, LastRefreshAt, LastError) are informational when
// read back from storage; the draft controller owns the live values.
type Session struct {
	Code          SessionCode
	DraftID       DraftID
	Filter        Position // Empty means no filter
	State         RefreshState
	Generation    uint64 // Newest fetch generation applied to this session
	LastRefreshAt time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
