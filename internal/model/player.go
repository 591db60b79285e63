package model

import "strings"

// PlayerID is the draft source's identifier for a player
type PlayerID string

// Position is a canonical fantasy position code
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// FantasyPositions lists the positions the board knows how to filter by, in display order
var FantasyPositions = []Position{
	PositionQB,
	PositionRB,
	PositionWR,
	PositionTE,
	PositionK,
	PositionDEF,
}

// ParsePosition normalises user input into a Position.
// An empty string is valid and means "no position".
func ParsePosition(s string) (Position, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if s == "DST" {
		s = string(PositionDEF)
	}
	for _, p := range FantasyPositions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", ErrInvalidPosition
}

// IsFantasyPosition reports whether p is one of FantasyPositions
func IsFantasyPosition(p Position) bool {
	for _, fp := range FantasyPositions {
		if fp == p {
			return true
		}
	}
	return false
}

// Player is one entry of the roster index
type Player struct {
	ID               PlayerID   `json:"player_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Team             *string    `json:"team"`
	Position         Position   `json:"position"`
	FantasyPositions []Position `json:"fantasy_positions"`
}

// FullName is the name used to match ranking entries against the roster
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// TeamName returns the team abbreviation, or "" for free agents
func (p *Player) TeamName() string {
	if p.Team == nil {
		return ""
	}
	return *p.Team
}

// HasFantasyPosition reports whether any of the player's eligible positions is pos
func (p *Player) HasFantasyPosition(pos Position) bool {
	for _, fp := range p.FantasyPositions {
		if fp == pos {
			return true
		}
	}
	return false
}
