package model

import "time"

// DraftID identifies a draft on the external draft source
type DraftID string

// Pick is a single selection event reported by the draft source.
// PlayerID is nil when the slot has no player yet or is a non-player pick.
type Pick struct {
	PickNo    int       `json:"pick_no"`
	Round     int       `json:"round,omitempty"`
	DraftSlot int       `json:"draft_slot,omitempty"`
	PickedBy  string    `json:"picked_by,omitempty"`
	PlayerID  *PlayerID `json:"player_id"`
}

// Player returns the picked player's identifier, if there is one
func (p Pick) Player() (PlayerID, bool) {
	if p.PlayerID == nil || *p.PlayerID == "" {
		return "", false
	}
	return *p.PlayerID, true
}

// Snapshot is the full pick list as returned by one successful poll.
// A newer snapshot replaces an older one wholesale; snapshots are never edited in place.
type Snapshot struct {
	DraftID    DraftID
	Picks      []Pick
	Generation uint64
	FetchedAt  time.Time
}

// NewSnapshot copies picks so the caller's slice can't alias the snapshot
func NewSnapshot(draftID DraftID, picks []Pick, generation uint64, fetchedAt time.Time) *Snapshot {
	owned := make([]Pick, len(picks))
	copy(owned, picks)
	return &Snapshot{
		DraftID:    draftID,
		Picks:      owned,
		Generation: generation,
		FetchedAt:  fetchedAt,
	}
}

// DraftInfo is descriptive metadata about a draft, used for display only
type DraftInfo struct {
	DraftID DraftID
	Name    string
	Status  string
	Season  string
	Teams   int
	Rounds  int
}
