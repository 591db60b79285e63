package storage

import (
	"context"

	"github.com/mcoot/draftboard/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Roster operations
	SaveRoster(ctx context.Context, players []model.Player) error
	GetRoster(ctx context.Context) ([]model.Player, error)

	// Rankings operations
	SaveRankings(ctx context.Context, rankings []model.RankedPlayer) error
	GetRankings(ctx context.Context) ([]model.RankedPlayer, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	DeleteSession(ctx context.Context, code model.SessionCode) error

	// Snapshot operations. Only the latest snapshot per draft is kept.
	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error
	GetSnapshot(ctx context.Context, draftID model.DraftID) (*model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, draftID model.DraftID) error
}
