package sse

import (
	"bytes"
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/web/templates/components"
)

// SSE event names the board page listens for
const (
	EventBoardUpdate    = "board-update"
	EventSessionDeleted = "session-deleted"
)

// EventData represents SSE event data
type EventData struct {
	EventName string
	HTML      string
}

// Renderer converts draft events to HTML fragments for SSE
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="true">` + html + `</div>`
}

// RenderBoard renders every board fragment as out-of-band swaps in one payload
func (r *Renderer) RenderBoard(ctx context.Context, board *model.Board) (string, error) {
	fragments := []struct {
		id string
		c  templ.Component
	}{
		{components.TitleID, components.Heading(board)},
		{components.StatusID, components.StatusLine(board)},
		{components.ControlsID, components.Controls(board)},
		{components.PicksID, components.PicksTable(board)},
		{components.AvailableID, components.AvailableTable(board)},
	}

	var b strings.Builder
	for _, f := range fragments {
		var buf bytes.Buffer
		if err := f.c.Render(ctx, &buf); err != nil {
			return "", err
		}
		b.WriteString(WrapForOOBSwap(f.id, buf.String()))
	}
	return b.String(), nil
}

// RenderEvent converts a draft event to the SSE events to send.
// Events that change nothing on the page produce none.
func (r *Renderer) RenderEvent(ctx context.Context, event model.Event) ([]EventData, error) {
	switch event.Type {
	case model.EventSessionDeleted:
		return []EventData{{EventName: EventSessionDeleted, HTML: string(event.SessionCode)}}, nil

	case model.EventRefreshSucceeded, model.EventRefreshFailed,
		model.EventFilterChanged, model.EventDraftChanged:
		if event.Board == nil {
			return nil, nil
		}
		html, err := r.RenderBoard(ctx, event.Board)
		if err != nil {
			return nil, err
		}
		return []EventData{{EventName: EventBoardUpdate, HTML: html}}, nil
	}
	return nil, nil
}
