package pages

import (
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/web/templates/layout"
)

// HomeData is the data for the home page
type HomeData struct {
	layout.PageData
	Sessions       []*model.Session
	DefaultDraftID string
}

// BoardData is the data for a board page
type BoardData struct {
	layout.PageData
	Board *model.Board
}

// ErrorData is the data for an error page
type ErrorData struct {
	layout.PageData
	Message string
}

func eventsPath(code model.SessionCode) string {
	return "/board/" + string(code) + "/events"
}
