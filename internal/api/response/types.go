package response

import (
	"time"

	"github.com/mcoot/draftboard/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status         string `json:"status"`
	RosterLoaded   bool   `json:"roster_loaded"`
	RosterPlayers  int    `json:"roster_players"`
	RankingsLoaded bool   `json:"rankings_loaded"`
	Rankings       int    `json:"rankings"`
	Sessions       int    `json:"sessions"`
}

// Session represents a draft board session in API responses
type Session struct {
	Code          string     `json:"code"`
	DraftID       string     `json:"draft_id"`
	Filter        string     `json:"filter"`
	State         string     `json:"state"`
	Generation    uint64     `json:"generation"`
	LastRefreshAt *time.Time `json:"last_refresh_at"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// SessionFromModel converts a model.Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		Code:          string(s.Code),
		DraftID:       string(s.DraftID),
		Filter:        string(s.Filter),
		State:         string(s.State),
		Generation:    s.Generation,
		LastRefreshAt: optionalTime(s.LastRefreshAt),
		LastError:     s.LastError,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// SessionListFromModel converts a list of sessions
func SessionListFromModel(sessions []*model.Session) SessionList {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		out[i] = SessionFromModel(s)
	}
	return SessionList{Sessions: out}
}

// Pick is one enriched draft pick
type Pick struct {
	PickNo    int    `json:"pick_no"`
	Round     int    `json:"round,omitempty"`
	DraftSlot int    `json:"draft_slot,omitempty"`
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	Known     bool   `json:"known"`
}

// PickFromModel converts a model.EnrichedPick. Unknown players carry the display label as name.
func PickFromModel(p model.EnrichedPick) Pick {
	return Pick{
		PickNo:    p.PickNo,
		Round:     p.Round,
		DraftSlot: p.DraftSlot,
		PlayerID:  string(p.PlayerID),
		Name:      p.DisplayName(),
		Position:  string(p.Position),
		Team:      p.Team,
		Known:     p.Known,
	}
}

// AvailablePlayer is one undrafted ranked player
type AvailablePlayer struct {
	Rank      int    `json:"rank"`
	Tier      int    `json:"tier"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	PlayerID  string `json:"player_id"`
	DisplayID string `json:"display_id"`
	Resolved  bool   `json:"resolved"`
	Favorite  bool   `json:"favorite,omitempty"`
}

// AvailablePlayerFromModel converts a model.AvailablePlayer
func AvailablePlayerFromModel(p model.AvailablePlayer) AvailablePlayer {
	return AvailablePlayer{
		Rank:      p.Rank,
		Tier:      p.Tier,
		Name:      p.Name,
		Position:  string(p.Position),
		PlayerID:  string(p.PlayerID),
		DisplayID: p.DisplayID(),
		Resolved:  p.Resolved,
		Favorite:  p.Favorite,
	}
}

// Status is the refresh status line
type Status struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Board is the reconciled board of a session
type Board struct {
	SessionCode   string            `json:"session_code"`
	DraftID       string            `json:"draft_id"`
	DraftName     string            `json:"draft_name,omitempty"`
	Filter        string            `json:"filter"`
	State         string            `json:"state"`
	Generation    uint64            `json:"generation"`
	Status        Status            `json:"status"`
	HasSnapshot   bool              `json:"has_snapshot"`
	PickCount     int               `json:"pick_count"`
	RosterCount   int               `json:"roster_count"`
	RankingsCount int               `json:"rankings_count"`
	LastRefreshAt *time.Time        `json:"last_refresh_at"`
	LastError     string            `json:"last_error,omitempty"`
	Picks         []Pick            `json:"picks"`
	Available     []AvailablePlayer `json:"available"`
}

// BoardFromModel converts a model.Board
func BoardFromModel(b *model.Board) Board {
	message, kind := b.Status()
	return Board{
		SessionCode:   string(b.SessionCode),
		DraftID:       string(b.DraftID),
		DraftName:     b.DraftName,
		Filter:        string(b.Filter),
		State:         string(b.State),
		Generation:    b.Generation,
		Status:        Status{Kind: kind, Message: message},
		HasSnapshot:   b.HasSnapshot,
		PickCount:     b.PickCount,
		RosterCount:   b.RosterCount,
		RankingsCount: b.RankingsCount,
		LastRefreshAt: optionalTime(b.LastRefreshAt),
		LastError:     b.LastError,
		Picks:         PicksFromModel(b.Picks),
		Available:     AvailableFromModel(b.Available),
	}
}

// PicksFromModel converts enriched picks, never returning nil
func PicksFromModel(picks []model.EnrichedPick) []Pick {
	out := make([]Pick, len(picks))
	for i, p := range picks {
		out[i] = PickFromModel(p)
	}
	return out
}

// AvailableFromModel converts available players, never returning nil
func AvailableFromModel(players []model.AvailablePlayer) []AvailablePlayer {
	out := make([]AvailablePlayer, len(players))
	for i, p := range players {
		out[i] = AvailablePlayerFromModel(p)
	}
	return out
}

// PickList is the response for the picks endpoint
type PickList struct {
	DraftID string `json:"draft_id"`
	Picks   []Pick `json:"picks"`
}

// AvailableList is the response for the available endpoint
type AvailableList struct {
	DraftID   string            `json:"draft_id"`
	Filter    string            `json:"filter"`
	Available []AvailablePlayer `json:"available"`
}

// Player is a roster entry
type Player struct {
	PlayerID         string   `json:"player_id"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	FullName         string   `json:"full_name"`
	Team             *string  `json:"team"`
	Position         string   `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
}

// PlayerFromModel converts a model.Player
func PlayerFromModel(p *model.Player) Player {
	positions := make([]string, len(p.FantasyPositions))
	for i, fp := range p.FantasyPositions {
		positions[i] = string(fp)
	}
	return Player{
		PlayerID:         string(p.ID),
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		FullName:         p.FullName(),
		Team:             p.Team,
		Position:         string(p.Position),
		FantasyPositions: positions,
	}
}

// Ranking is one ranking entry with its roster match
type Ranking struct {
	Rank     int    `json:"rank"`
	Tier     int    `json:"tier"`
	Name     string `json:"name"`
	Position string `json:"position"`
	PlayerID string `json:"player_id,omitempty"`
	Resolved bool   `json:"resolved"`
}

// RankingList is the response for the rankings endpoint
type RankingList struct {
	Rankings []Ranking `json:"rankings"`
}

// StreamMessage is one message on a session's websocket stream
type StreamMessage struct {
	Type        string    `json:"type"`
	SessionCode string    `json:"session_code"`
	Timestamp   time.Time `json:"timestamp"`
	Board       *Board    `json:"board,omitempty"`
}

// StreamMessageFromEvent converts a model.Event
func StreamMessageFromEvent(e model.Event) StreamMessage {
	msg := StreamMessage{
		Type:        string(e.Type),
		SessionCode: string(e.SessionCode),
		Timestamp:   e.Timestamp,
	}
	if e.Board != nil {
		b := BoardFromModel(e.Board)
		msg.Board = &b
	}
	return msg
}
