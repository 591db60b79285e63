package model

// RankedPlayer is one row of the static ranking list.
// Name is already normalised (suffixes stripped, aliases applied).
type RankedPlayer struct {
	Rank     int      `json:"rank"`
	Tier     int      `json:"tier"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}
