package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/draftboard/internal/model"
)

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestControls_SelectsFilter(t *testing.T) {
	b := &model.Board{SessionCode: "BOARD1", DraftID: "123", Filter: model.PositionWR}
	doc := renderDoc(t, Controls(b))

	selected := doc.Find("#position option[selected]")
	require.Equal(t, 1, selected.Length())
	value, _ := selected.Attr("value")
	assert.Equal(t, "WR", value)
	assert.Equal(t, len(model.FantasyPositions)+1, doc.Find("#position option").Length())

	action, _ := doc.Find("form").First().Attr("action")
	assert.Equal(t, "/board/BOARD1/draft", action)
	draftID, _ := doc.Find("#draft_id").Attr("value")
	assert.Equal(t, "123", draftID)
}

func TestAvailableTable_RowClasses(t *testing.T) {
	b := &model.Board{
		RankingsCount: 2,
		Available: []model.AvailablePlayer{
			{Rank: 1, Tier: 1, Name: "Bijan Robinson", PlayerID: "9509", Resolved: true, Favorite: true},
			{Rank: 2, Tier: 2, Name: "Nobody Known"},
		},
	}
	doc := renderDoc(t, AvailableTable(b))

	assert.Equal(t, 1, doc.Find("tr.tier-1.favorite").Length())
	assert.Equal(t, 1, doc.Find("tr.tier-2.unresolved").Length())
	assert.Equal(t, 0, doc.Find("tr.tier-1.unresolved").Length())
	assert.Equal(t, "★ Bijan Robinson", doc.Find("tr.favorite td.name").Text())
	assert.Equal(t, "Not found", doc.Find("tr.unresolved td.player-id").Text())
}

func TestAvailableTable_Empty(t *testing.T) {
	doc := renderDoc(t, AvailableTable(&model.Board{}))
	assert.Equal(t, "No rankings data available.", doc.Find("p.empty").Text())

	doc = renderDoc(t, AvailableTable(&model.Board{RankingsCount: 3, Filter: model.PositionWR}))
	assert.Equal(t, "No available players.", doc.Find("p.empty").Text())
	assert.Equal(t, "Available players WR", doc.Find("h2").Text())
}

func TestPicksTable_UnknownPick(t *testing.T) {
	b := &model.Board{Picks: []model.EnrichedPick{
		{PickNo: 2, PlayerID: "9999"},
		{PickNo: 1, PlayerID: "4034", Name: "Christian McCaffrey", Position: "RB", Team: "SF", Known: true},
	}}
	doc := renderDoc(t, PicksTable(b))

	assert.Equal(t, 2, doc.Find("tbody tr").Length())
	assert.Equal(t, 1, doc.Find("tr.unknown").Length())
	assert.Equal(t, "Christian McCaffrey", doc.Find("tbody tr").Eq(1).Find("td.name").Text())
}
