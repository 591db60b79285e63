package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	roster    []model.Player
	rankings  []model.RankedPlayer
	sessions  map[model.SessionCode]*model.Session
	snapshots map[model.DraftID]*model.Snapshot
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:  make(map[model.SessionCode]*model.Session),
		snapshots: make(map[model.DraftID]*model.Snapshot),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Roster operations

func (s *Storage) SaveRoster(ctx context.Context, players []model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = append(make([]model.Player, 0, len(players)), players...)
	return nil
}

func (s *Storage) GetRoster(ctx context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.roster == nil {
		return nil, model.ErrRosterNotLoaded
	}
	return append([]model.Player(nil), s.roster...), nil
}

// Rankings operations

func (s *Storage) SaveRankings(ctx context.Context, rankings []model.RankedPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankings = append(make([]model.RankedPlayer, 0, len(rankings)), rankings...)
	return nil
}

func (s *Storage) GetRankings(ctx context.Context) ([]model.RankedPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rankings == nil {
		return nil, model.ErrRankingsNotLoaded
	}
	return append([]model.RankedPlayer(nil), s.rankings...), nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.Code] = &cp
	return nil
}

func (s *Storage) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		cp := *session
		sessions = append(sessions, &cp)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Code < sessions[j].Code
	})
	return sessions, nil
}

func (s *Storage) DeleteSession(ctx context.Context, code model.SessionCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
	return nil
}

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.DraftID] = model.NewSnapshot(snapshot.DraftID, snapshot.Picks, snapshot.Generation, snapshot.FetchedAt)
	return nil
}

func (s *Storage) GetSnapshot(ctx context.Context, draftID model.DraftID) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[draftID]
	if !ok {
		return nil, model.ErrSnapshotNotFound
	}
	return model.NewSnapshot(snap.DraftID, snap.Picks, snap.Generation, snap.FetchedAt), nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, draftID model.DraftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, draftID)
	return nil
}
