// Package reconcile merges a draft snapshot with the static roster and ranking list.
// Every function here is pure: inputs are never modified and outputs are new slices.
package reconcile

import (
	"sort"
	"strings"

	"github.com/mcoot/draftboard/internal/model"
)

// Roster resolves identifiers and display names against one roster load
type Roster interface {
	Lookup(id model.PlayerID) (*model.Player, bool)
	Resolve(name string) (model.PlayerID, bool)
}

// Favorites is the allow-list of display names to highlight
type Favorites map[string]struct{}

// NewFavorites builds a Favorites set; names are trimmed but otherwise matched exactly
func NewFavorites(names []string) Favorites {
	f := make(Favorites, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			f[n] = struct{}{}
		}
	}
	return f
}

// Contains reports whether name is a favorite
func (f Favorites) Contains(name string) bool {
	_, ok := f[name]
	return ok
}

// Names returns the favorites in sorted order
func (f Favorites) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DraftedSet returns the identifiers of every drafted player.
// Picks without a player identifier are ignored.
func DraftedSet(picks []model.Pick) map[model.PlayerID]struct{} {
	drafted := make(map[model.PlayerID]struct{}, len(picks))
	for _, p := range picks {
		if id, ok := p.Player(); ok {
			drafted[id] = struct{}{}
		}
	}
	return drafted
}

// EnrichPicks joins each pick with roster data, most recent pick first.
// Picks with no player identifier are left out; unknown identifiers are kept and marked.
func EnrichPicks(picks []model.Pick, roster Roster) []model.EnrichedPick {
	out := make([]model.EnrichedPick, 0, len(picks))
	for _, p := range picks {
		id, ok := p.Player()
		if !ok {
			continue
		}
		ep := model.EnrichedPick{
			PickNo:    p.PickNo,
			Round:     p.Round,
			DraftSlot: p.DraftSlot,
			PlayerID:  id,
		}
		if player, found := roster.Lookup(id); found {
			ep.Known = true
			ep.Name = player.FullName()
			ep.Position = player.Position
			ep.Team = player.TeamName()
		}
		out = append(out, ep)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PickNo > out[j].PickNo
	})
	return out
}

// Available returns the ranked players still on the board, in ranking-list order.
// An empty filter means every position. Players whose name can't be resolved are
// always treated as available.
func Available(
	rankings []model.RankedPlayer,
	roster Roster,
	drafted map[model.PlayerID]struct{},
	filter model.Position,
	favorites Favorites,
) []model.AvailablePlayer {
	out := make([]model.AvailablePlayer, 0, len(rankings))
	for _, r := range rankings {
		if filter != "" && r.Position != filter {
			continue
		}

		id, resolved := roster.Resolve(r.Name)
		if resolved {
			if _, taken := drafted[id]; taken {
				continue
			}
		}

		ap := model.AvailablePlayer{
			Rank:     r.Rank,
			Tier:     r.Tier,
			Name:     r.Name,
			Position: r.Position,
			Resolved: resolved,
			Favorite: favorites.Contains(r.Name),
		}
		if resolved {
			ap.PlayerID = id
		}
		out = append(out, ap)
	}
	return out
}

// Input is everything needed to compute a board
type Input struct {
	Snapshot  *model.Snapshot // Nil before the first successful refresh
	Rankings  []model.RankedPlayer
	Roster    Roster
	Filter    model.Position
	Favorites Favorites
}

// Build computes the pick list and availability list for one snapshot.
// Session and refresh-state fields of the result are left for the caller to fill.
func Build(in Input) *model.Board {
	var picks []model.Pick
	board := &model.Board{
		Filter:        in.Filter,
		RankingsCount: len(in.Rankings),
	}
	if in.Snapshot != nil {
		picks = in.Snapshot.Picks
		board.DraftID = in.Snapshot.DraftID
		board.Generation = in.Snapshot.Generation
		board.LastRefreshAt = in.Snapshot.FetchedAt
		board.PickCount = len(picks)
		board.HasSnapshot = true
	}

	board.Picks = EnrichPicks(picks, in.Roster)
	board.Available = Available(in.Rankings, in.Roster, DraftedSet(picks), in.Filter, in.Favorites)
	return board
}
