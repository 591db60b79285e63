// Package components renders the pieces of the draft board. Each fragment
// renders only its inner markup so the same output can fill the page or be
// pushed over SSE as an out-of-band swap.
package components

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/draftboard/internal/model"
)

// Element ids shared by the page and the SSE broadcaster
const (
	StatusID    = "board-status"
	TitleID     = "board-title"
	ControlsID  = "board-controls"
	PicksID     = "picks"
	AvailableID = "available"
)

// Title is the board heading: the draft's name when known, otherwise its id
func Title(b *model.Board) string {
	if b.DraftName != "" {
		return b.DraftName
	}
	return "Draft " + string(b.DraftID)
}

func statusText(b *model.Board) string {
	msg, _ := b.Status()
	return msg
}

func statusKind(b *model.Board) string {
	_, kind := b.Status()
	return kind
}

func counts(b *model.Board) string {
	return strconv.Itoa(b.RosterCount) + " players, " + strconv.Itoa(b.RankingsCount) + " ranked"
}

// boardPath is the path of a board page, or of one of its form actions
func boardPath(code model.SessionCode, action string) string {
	p := "/board/" + string(code)
	if action != "" {
		p += "/" + action
	}
	return p
}

func boardURL(code model.SessionCode, action string) templ.SafeURL {
	return templ.URL(boardPath(code, action))
}
