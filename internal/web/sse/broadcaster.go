package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/draftboard/internal/model"
)

// Broadcaster pushes draft events to the SSE clients of the affected board.
// It implements draft.Publisher.
type Broadcaster struct {
	hubManager *HubManager
	renderer   *Renderer
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		renderer:   NewRenderer(),
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish renders event and broadcasts it to the board's hub, if anyone is watching
func (b *Broadcaster) Publish(ctx context.Context, event model.Event) {
	hub := b.hubManager.GetHub(event.SessionCode)
	if hub == nil {
		return
	}

	events, err := b.renderer.RenderEvent(ctx, event)
	if err != nil {
		b.logger.Error("sse failed to render board",
			slog.String("session", string(event.SessionCode)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}
	for _, e := range events {
		hub.BroadcastEvent(e.EventName, e.HTML)
	}

	if event.Type == model.EventSessionDeleted {
		b.hubManager.RemoveHub(event.SessionCode)
	}
}
