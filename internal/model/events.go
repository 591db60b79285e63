package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSessionCreated   EventType = "session_created"
	EventSessionDeleted   EventType = "session_deleted"
	EventRefreshSucceeded EventType = "refresh_succeeded"
	EventRefreshFailed    EventType = "refresh_failed"
	EventFilterChanged    EventType = "filter_changed"
	EventDraftChanged     EventType = "draft_changed"
)

// Event describes a change to a session, carried to presenters along with the new board
type Event struct {
	Type        EventType
	Timestamp   time.Time
	SessionCode SessionCode
	Board       *Board // Nil for EventSessionDeleted
}
