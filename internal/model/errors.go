package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDraftID  = errors.New("invalid draft id")
	ErrInvalidPosition = errors.New("invalid position")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// Static data errors
	ErrRosterNotLoaded   = errors.New("roster not loaded")
	ErrRankingsNotLoaded = errors.New("rankings not loaded")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidRanking    = errors.New("invalid ranking entry")
)
