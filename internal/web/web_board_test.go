package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/draftboard/internal/testutil"
)

func TestHomePage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "form.create-board")
	value, _ := doc.Find("form.create-board input[name=draft_id]").Attr("value")
	assert.Equal(t, testDraft, value, "default draft id prefills the form")
	assertContainsText(t, doc, "#sessions", "No boards yet.")
}

func TestHomePage_ListsBoards(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createBoard("BOARD1", testDraft, "")
	ts.createBoard("BOARD2", "42", "wr")

	doc := parseHTML(ts.get("/").Body)
	assert.Equal(t, []string{"BOARD1", "BOARD2"}, columnTexts(doc, ".session-list a"))
	assertContainsText(t, doc, ".session-list", "WR")
}

func TestCreateBoard_ShowsBoard(t *testing.T) {
	ts := newWebTestServer(t)
	ts.fake.SetPicks(testDraft, testutil.Picked(1, "4034"), testutil.Picked(2, "6794"))

	code := ts.createBoard("BOARD1", testDraft, "")
	ts.waitForRefresh(code, 1)

	rr := ts.get("/board/" + code)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)

	assertContainsText(t, doc, ".flash-success", "Board opened!")
	assertContainsText(t, doc, "#board-title h1", "Draft "+testDraft)
	assertContainsText(t, doc, "#board-status .status.success", "Successfully loaded 2 picks! Last updated: 12:00:00")

	// Most recent pick first
	assert.Equal(t, []string{"2", "1"}, columnTexts(doc, "#picks td.pick-no"))
	assert.Equal(t, []string{"Justin Jefferson", "Christian McCaffrey"}, columnTexts(doc, "#picks td.name"))

	// Drafted players are gone, ranking order kept
	assert.Equal(t, []string{"3", "4", "5", "6", "7", "8"}, columnTexts(doc, "#available td.rank"))
	assertContainsElement(t, doc, "#available tr.tier-1.favorite")
	assertContainsElement(t, doc, "#available tr.tier-2.unresolved")
	assertContainsText(t, doc, "#available tr.unresolved td.player-id", "Not found")

	sse, _ := doc.Find("[sse-connect]").Attr("sse-connect")
	assert.Equal(t, "/board/"+code+"/events", sse)
}

func TestCreateBoard_InvalidDraftID(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/board", url.Values{"draft_id": {"  "}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "Please enter a valid draft ID")
}

func TestCreateBoard_InvalidPosition(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/board", url.Values{"draft_id": {testDraft}, "position": {"LB"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "Unknown position")
}

func TestBoard_NotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/board/NOPE99")
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "Board not found")
}

func TestBoard_SetFilter(t *testing.T) {
	ts := newWebTestServer(t)
	code := ts.createBoard("BOARD1", testDraft, "")
	ts.waitForRefresh(code, 1)

	rr := ts.post("/board/"+code+"/filter", url.Values{"position": {"rb"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Showing RB only")
	assert.Equal(t, []string{"RB", "RB"}, columnTexts(doc, "#available td.pos"))
	selected, _ := doc.Find("#position option[selected]").Attr("value")
	assert.Equal(t, "RB", selected)

	// Clearing the filter shows everyone again
	rr = ts.post("/board/"+code+"/filter", url.Values{"position": {""}})
	doc = parseHTML(ts.followRedirect(rr).Body)
	assert.Len(t, columnTexts(doc, "#available td.rank"), 8)
}

func TestBoard_SetFilterHTMX(t *testing.T) {
	ts := newWebTestServer(t)
	code := ts.createBoard("BOARD1", testDraft, "")
	ts.waitForRefresh(code, 1)

	rr := ts.postHTMX("/board/"+code+"/filter", url.Values{"position": {"DST"}})
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#board-content")
	assertNotContainsElement(t, doc, "html head title")
	assert.Equal(t, []string{"San Francisco 49ers"}, columnTexts(doc, "#available td.name"))
}

func TestBoard_InvalidFilter(t *testing.T) {
	ts := newWebTestServer(t)
	code := ts.createBoard("BOARD1", testDraft, "QB")

	rr := ts.post("/board/"+code+"/filter", url.Values{"position": {"LB"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/board/"+code, rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "Unknown position")
	selected, _ := doc.Find("#position option[selected]").Attr("value")
	assert.Equal(t, "QB", selected, "filter unchanged")
}

func TestBoard_RefreshFailureShowsError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.fake.SetPicks(testDraft, testutil.Picked(1, "4034"))
	code := ts.createBoard("BOARD1", testDraft, "")
	ts.waitForRefresh(code, 1)

	ts.fake.SetStatus(testDraft, http.StatusServiceUnavailable)
	rr := ts.postHTMX("/board/"+code+"/refresh", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#board-status .status.error", "Error: HTTP error! status: 503")
	// The last good picks stay on the board
	assert.Equal(t, []string{"Christian McCaffrey"}, columnTexts(doc, "#picks td.name"))
}

func TestBoard_ChangeDraft(t *testing.T) {
	ts := newWebTestServer(t)
	ts.fake.SetPicks(testDraft, testutil.Picked(1, "4034"))
	ts.fake.SetDraftName("42", "Office League")
	code := ts.createBoard("BOARD1", testDraft, "")
	ts.waitForRefresh(code, 1)

	rr := ts.post("/board/"+code+"/draft", url.Values{"draft_id": {"42"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	ts.waitForRefresh(code, 2)
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Now following draft 42")
	value, _ := doc.Find("#draft_id").Attr("value")
	assert.Equal(t, "42", value)
	assertContainsText(t, doc, "#picks", "No picks yet.")
}

func TestBoard_Delete(t *testing.T) {
	ts := newWebTestServer(t)
	code := ts.createBoard("BOARD1", testDraft, "")

	rr := ts.post("/board/"+code+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Board BOARD1 deleted")
	assertContainsText(t, doc, "#sessions", "No boards yet.")

	rr = ts.postHTMX("/board/"+code+"/refresh", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("HX-Redirect"))
}

func TestBoard_NoRankings(t *testing.T) {
	ts := newBareWebTestServer(t)
	code := ts.createBoard("BOARD1", testDraft, "")

	doc := parseHTML(ts.get("/board/" + code).Body)
	assertContainsText(t, doc, "#available", "No rankings data available.")
}
