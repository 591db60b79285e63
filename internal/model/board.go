package model

import (
	"strconv"
	"time"
)

// NotFoundID is shown in place of a player identifier that could not be resolved
const NotFoundID = "Not found"

// EnrichedPick is a pick joined with roster data for display
type EnrichedPick struct {
	PickNo    int
	Round     int
	DraftSlot int
	PlayerID  PlayerID
	Name      string   // Empty when Known is false
	Position  Position // Empty when Known is false
	Team      string
	Known     bool // False when the identifier is not in the roster index
}

// DisplayName returns the player's name, or an "unknown player" label with the raw identifier
func (p EnrichedPick) DisplayName() string {
	if !p.Known {
		return "Unknown player (" + string(p.PlayerID) + ")"
	}
	return p.Name
}

// AvailablePlayer is a ranked player that has not been drafted
type AvailablePlayer struct {
	Rank     int
	Tier     int
	Name     string
	Position Position
	PlayerID PlayerID // Empty when Resolved is false
	Resolved bool
	Favorite bool
}

// DisplayID returns the resolved identifier or NotFoundID
func (p AvailablePlayer) DisplayID() string {
	if !p.Resolved {
		return NotFoundID
	}
	return string(p.PlayerID)
}

// Board is the reconciled view of a session at a point in time
type Board struct {
	SessionCode   SessionCode
	DraftID       DraftID
	DraftName     string
	Filter        Position
	State         RefreshState
	Generation    uint64
	Picks         []EnrichedPick    // Most recent first
	Available     []AvailablePlayer // Ranking order
	PickCount     int               // Picks in the snapshot, including empty slots
	RankingsCount int
	RosterCount   int
	HasSnapshot   bool
	LastRefreshAt time.Time
	LastError     string
}

// Status line kinds
const (
	StatusLoading = "loading"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Status returns the one-line refresh status shown to users and its kind
func (b *Board) Status() (string, string) {
	if b.LastError != "" {
		return "Error: " + b.LastError, StatusError
	}
	if !b.HasSnapshot {
		return "Fetching draft status...", StatusLoading
	}
	return "Successfully loaded " + strconv.Itoa(b.PickCount) + " picks! Last updated: " +
		b.LastRefreshAt.Format("15:04:05"), StatusSuccess
}
