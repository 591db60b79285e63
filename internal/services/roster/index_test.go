package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/draftboard/internal/model"
)

func player(id, first, last string) model.Player {
	return model.Player{ID: model.PlayerID(id), FirstName: first, LastName: last}
}

func TestResolveExactFullName(t *testing.T) {
	idx := NewIndex([]model.Player{player("100", "Ja'Marr", "Chase")})

	id, ok := idx.Resolve("Ja'Marr Chase")
	require.True(t, ok)
	assert.Equal(t, model.PlayerID("100"), id)
}

func TestResolveIsCaseSensitive(t *testing.T) {
	idx := NewIndex([]model.Player{player("100", "Ja'Marr", "Chase")})

	_, ok := idx.Resolve("ja'marr chase")
	assert.False(t, ok)
}

func TestResolveDoesNotTrimQuery(t *testing.T) {
	idx := NewIndex([]model.Player{player("100", "Ja'Marr", "Chase")})

	_, ok := idx.Resolve("  Ja'Marr Chase ")
	assert.False(t, ok, "ranked names are compared as written")

	id, ok := idx.Resolve("Ja'Marr Chase")
	require.True(t, ok)
	assert.Equal(t, model.PlayerID("100"), id)
}

func TestResolveMissingLastName(t *testing.T) {
	// Full name is trimmed, so a player with no last name matches on first name alone
	idx := NewIndex([]model.Player{player("1", "Cher", "")})

	id, ok := idx.Resolve("Cher")
	require.True(t, ok)
	assert.Equal(t, model.PlayerID("1"), id)
}

func TestResolveUnknownName(t *testing.T) {
	idx := NewIndex(nil)

	_, ok := idx.Resolve("Ja'Marr Chase")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestDuplicateNamesResolveToLowestNumericID(t *testing.T) {
	idx := NewIndex([]model.Player{
		player("1200", "Mike", "Williams"),
		player("987", "Mike", "Williams"),
		player("4500", "Mike", "Williams"),
	})

	id, ok := idx.Resolve("Mike Williams")
	require.True(t, ok)
	assert.Equal(t, model.PlayerID("987"), id)

	ambiguous := idx.Ambiguous()
	require.Len(t, ambiguous, 1)
	assert.Equal(t, "Mike Williams", ambiguous[0].Name)
	assert.Equal(t, []model.PlayerID{"987", "1200", "4500"}, ambiguous[0].IDs)
}

func TestDuplicateResolutionIgnoresInputOrder(t *testing.T) {
	a := NewIndex([]model.Player{player("20", "Josh", "Allen"), player("3", "Josh", "Allen")})
	b := NewIndex([]model.Player{player("3", "Josh", "Allen"), player("20", "Josh", "Allen")})

	idA, _ := a.Resolve("Josh Allen")
	idB, _ := b.Resolve("Josh Allen")
	assert.Equal(t, model.PlayerID("3"), idA)
	assert.Equal(t, idA, idB)
}

func TestNumericIDsSortBeforeTeamCodes(t *testing.T) {
	assert.True(t, lessID("9", "10"))
	assert.False(t, lessID("10", "9"))
	assert.True(t, lessID("9999", "ARI"))
	assert.True(t, lessID("ARI", "BAL"))
	assert.False(t, lessID("BAL", "ARI"))
}

func TestLookup(t *testing.T) {
	team := "CIN"
	idx := NewIndex([]model.Player{{ID: "100", FirstName: "Ja'Marr", LastName: "Chase", Team: &team, Position: model.PositionWR}})

	p, ok := idx.Lookup("100")
	require.True(t, ok)
	assert.Equal(t, "Ja'Marr Chase", p.FullName())
	assert.Equal(t, "CIN", p.TeamName())

	_, ok = idx.Lookup("200")
	assert.False(t, ok)
}

func TestAmbiguousReturnsCopy(t *testing.T) {
	idx := NewIndex([]model.Player{player("1", "A", "B"), player("2", "A", "B")})

	first := idx.Ambiguous()
	first[0].IDs[0] = "mutated"

	assert.Equal(t, model.PlayerID("1"), idx.Ambiguous()[0].IDs[0])
}
