package sleeper

import "github.com/mcoot/draftboard/internal/model"

// pick is one element of the /draft/{id}/picks response
type pick struct {
	PickNo    int     `json:"pick_no"`
	Round     int     `json:"round"`
	DraftSlot int     `json:"draft_slot"`
	PickedBy  string  `json:"picked_by"`
	PlayerID  *string `json:"player_id"`
}

func (p pick) toModel() model.Pick {
	mp := model.Pick{
		PickNo:    p.PickNo,
		Round:     p.Round,
		DraftSlot: p.DraftSlot,
		PickedBy:  p.PickedBy,
	}
	if p.PlayerID != nil && *p.PlayerID != "" {
		id := model.PlayerID(*p.PlayerID)
		mp.PlayerID = &id
	}
	return mp
}

// draft is the /draft/{id} response, reduced to what the board displays
type draft struct {
	DraftID  string `json:"draft_id"`
	Status   string `json:"status"`
	Season   string `json:"season"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Settings struct {
		Teams  int `json:"teams"`
		Rounds int `json:"rounds"`
	} `json:"settings"`
}

func (d draft) toModel() model.DraftInfo {
	return model.DraftInfo{
		DraftID: model.DraftID(d.DraftID),
		Name:    d.Metadata.Name,
		Status:  d.Status,
		Season:  d.Season,
		Teams:   d.Settings.Teams,
		Rounds:  d.Settings.Rounds,
	}
}

// Player is one entry of the /players/nfl response, restricted to the fields
// the roster file keeps. Sleeper sends many more; they are dropped on decode.
type Player struct {
	PlayerID         string   `json:"player_id"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Team             *string  `json:"team"`
	Position         *string  `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
}
