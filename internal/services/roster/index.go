package roster

import (
	"sort"
	"strconv"

	"github.com/mcoot/draftboard/internal/model"
)

// AmbiguousName is a full name shared by more than one player.
// IDs are in resolution order; the first one is what Resolve returns.
type AmbiguousName struct {
	Name string
	IDs  []model.PlayerID
}

// Index is an immutable lookup structure over one roster load
type Index struct {
	byID      map[model.PlayerID]*model.Player
	byName    map[string]model.PlayerID
	ambiguous []AmbiguousName
}

// NewIndex builds the id and full-name indexes.
// When several players share a full name the lowest identifier wins.
func NewIndex(players []model.Player) *Index {
	idx := &Index{
		byID:   make(map[model.PlayerID]*model.Player, len(players)),
		byName: make(map[string]model.PlayerID, len(players)),
	}

	for i := range players {
		p := players[i]
		idx.byID[p.ID] = &p
	}

	ids := make([]model.PlayerID, 0, len(idx.byID))
	for id := range idx.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessID(ids[i], ids[j])
	})

	shared := make(map[string][]model.PlayerID)
	for _, id := range ids {
		name := idx.byID[id].FullName()
		if name == "" {
			continue
		}
		if _, taken := idx.byName[name]; taken {
			if len(shared[name]) == 0 {
				shared[name] = []model.PlayerID{idx.byName[name]}
			}
			shared[name] = append(shared[name], id)
			continue
		}
		idx.byName[name] = id
	}

	for name, dupes := range shared {
		idx.ambiguous = append(idx.ambiguous, AmbiguousName{Name: name, IDs: dupes})
	}
	sort.Slice(idx.ambiguous, func(i, j int) bool {
		return idx.ambiguous[i].Name < idx.ambiguous[j].Name
	})

	return idx
}

// lessID orders numeric identifiers numerically and everything else lexically.
// Numeric identifiers sort before non-numeric ones (team defenses use abbreviations).
func lessID(a, b model.PlayerID) bool {
	an, aErr := strconv.ParseUint(string(a), 10, 64)
	bn, bErr := strconv.ParseUint(string(b), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if an != bn {
			return an < bn
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// Lookup returns the player with the given identifier
func (idx *Index) Lookup(id model.PlayerID) (*model.Player, bool) {
	p, ok := idx.byID[id]
	return p, ok
}

// Resolve returns the identifier of the player whose full name equals name exactly.
// No case folding or trimming is applied to name.
func (idx *Index) Resolve(name string) (model.PlayerID, bool) {
	id, ok := idx.byName[name]
	return id, ok
}

// Len returns the number of players in the index
func (idx *Index) Len() int {
	return len(idx.byID)
}

// Ambiguous returns every full name shared by more than one player, sorted by name
func (idx *Index) Ambiguous() []AmbiguousName {
	out := make([]AmbiguousName, len(idx.ambiguous))
	for i, a := range idx.ambiguous {
		out[i] = AmbiguousName{Name: a.Name, IDs: append([]model.PlayerID(nil), a.IDs...)}
	}
	return out
}
