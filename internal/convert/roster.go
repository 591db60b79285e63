// Package convert turns raw upstream data into the board's static data files:
// the Sleeper player dump into a roster file, and a FantasyPros ranking export
// into a rankings file.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/sleeper"
)

// RosterStats summarises one roster filter run
type RosterStats struct {
	Original int
	Kept     int
	// ByPosition counts kept players per fantasy position. A player eligible at
	// several positions is counted once for each.
	ByPosition map[model.Position]int
}

// Removed is the number of players dropped by the filter
func (s RosterStats) Removed() int {
	return s.Original - s.Kept
}

// Write prints the summary in a human readable form
func (s RosterStats) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Original player count: %d\n", s.Original)
	fmt.Fprintf(&b, "Filtered player count: %d\n", s.Kept)
	fmt.Fprintf(&b, "Removed %d players (null team or non-fantasy positions)\n", s.Removed())
	b.WriteString("\nBreakdown by fantasy position:\n")
	for _, pos := range model.FantasyPositions {
		fmt.Fprintf(&b, "  %s: %d players\n", pos, s.ByPosition[pos])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// keep reports whether p belongs in the roster: it has a team and at least
// one fantasy position the board knows
func keep(p sleeper.Player) bool {
	if p.Team == nil {
		return false
	}
	for _, fp := range p.FantasyPositions {
		if model.IsFantasyPosition(model.Position(fp)) {
			return true
		}
	}
	return false
}

// FilterPlayers keeps the fantasy-relevant players with a team. Names are
// NFC-normalised and a missing player_id is filled from the map key.
func FilterPlayers(players map[string]sleeper.Player) (map[string]sleeper.Player, RosterStats) {
	stats := RosterStats{
		Original:   len(players),
		ByPosition: make(map[model.Position]int),
	}

	kept := make(map[string]sleeper.Player)
	for key, p := range players {
		if !keep(p) {
			continue
		}
		if p.PlayerID == "" {
			p.PlayerID = key
		}
		p.FirstName = norm.NFC.String(p.FirstName)
		p.LastName = norm.NFC.String(p.LastName)
		kept[key] = p

		for _, fp := range p.FantasyPositions {
			if pos := model.Position(fp); model.IsFantasyPosition(pos) {
				stats.ByPosition[pos]++
			}
		}
	}
	stats.Kept = len(kept)
	return kept, stats
}

// FilterRoster filters a raw player file, a JSON object keyed by player id,
// and returns the roster file contents
func FilterRoster(data []byte) ([]byte, RosterStats, error) {
	var players map[string]sleeper.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, RosterStats{}, fmt.Errorf("parse players: %w", err)
	}
	if players == nil {
		return nil, RosterStats{}, fmt.Errorf("parse players: expected a JSON object keyed by player id")
	}

	kept, stats := FilterPlayers(players)
	out, err := MarshalRoster(kept)
	if err != nil {
		return nil, RosterStats{}, err
	}
	return out, stats, nil
}

// MarshalRoster encodes a roster file. Keys are written in sorted order.
func MarshalRoster(players map[string]sleeper.Player) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(players); err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}
	return buf.Bytes(), nil
}

// BackupPath returns where FilterRosterFile keeps the original of path:
// players.json is backed up as players_backup.json
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_backup" + ext
}

// FilterRosterFile filters the player file at in and writes the roster to out.
// The original contents of in are saved to BackupPath(in) first, so in and out
// may be the same file.
func FilterRosterFile(in, out string) (RosterStats, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return RosterStats{}, fmt.Errorf("read players: %w", err)
	}

	roster, stats, err := FilterRoster(data)
	if err != nil {
		return RosterStats{}, err
	}

	if err := os.WriteFile(BackupPath(in), data, 0o644); err != nil {
		return RosterStats{}, fmt.Errorf("write backup: %w", err)
	}
	if err := WriteFile(out, roster); err != nil {
		return RosterStats{}, err
	}
	return stats, nil
}

// WriteFile writes data to path, creating missing parent directories
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
