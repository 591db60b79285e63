package draft

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/draftboard/internal/model"
)

// session is the live state of one board. The controller owns it; everything
// that leaves the package is a copy.
type session struct {
	code      model.SessionCode
	createdAt time.Time

	// publishMu serialises apply+publish so subscribers see boards in generation order
	publishMu sync.Mutex

	mu          sync.RWMutex
	draftID     model.DraftID
	draftName   string
	filter      model.Position
	snapshot    *model.Snapshot // Nil until the first successful fetch for draftID
	issuedGen   uint64          // Newest generation handed to a fetch
	appliedGen  uint64          // Newest generation whose result was applied
	inFlight    int
	lastError   string
	lastRefresh time.Time
	updatedAt   time.Time
	stopPoller  context.CancelFunc
	closed      bool // Set once the session is deleted; nothing is applied or saved after
}

func newSession(s *model.Session) *session {
	return &session{
		code:        s.Code,
		createdAt:   s.CreatedAt,
		draftID:     s.DraftID,
		filter:      s.Filter,
		issuedGen:   s.Generation,
		appliedGen:  s.Generation,
		lastError:   s.LastError,
		lastRefresh: s.LastRefreshAt,
		updatedAt:   s.UpdatedAt,
	}
}

// model returns a copy of the session's current state. Caller must hold mu.
func (s *session) model() *model.Session {
	state := model.RefreshStateIdle
	if s.inFlight > 0 {
		state = model.RefreshStateFetching
	}
	return &model.Session{
		Code:          s.code,
		DraftID:       s.draftID,
		Filter:        s.filter,
		State:         state,
		Generation:    s.appliedGen,
		LastRefreshAt: s.lastRefresh,
		LastError:     s.lastError,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

// begin issues a new generation for a fetch of draftID.
// It returns false if the session has since moved to another draft.
func (s *session) begin(draftID model.DraftID) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draftID != draftID {
		return 0, false
	}
	s.issuedGen++
	s.inFlight++
	return s.issuedGen, true
}

// outcome describes what happened to a completed fetch
type outcome int

const (
	outcomeApplied outcome = iota
	outcomeFailed
	outcomeStale
	outcomeDraftChanged
	outcomeClosed
)

func (o outcome) String() string {
	switch o {
	case outcomeApplied:
		return "applied"
	case outcomeFailed:
		return "failed"
	case outcomeStale:
		return "stale"
	case outcomeClosed:
		return "session_deleted"
	default:
		return "draft_changed"
	}
}

// complete records the result of fetch gen. A success replaces the snapshot wholesale;
// a failure keeps the previous snapshot and only sets the error.
// Results older than the newest applied generation are discarded.
func (s *session) complete(draftID model.DraftID, gen uint64, picks []model.Pick, fetchErr error, now time.Time) outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--

	if s.closed {
		return outcomeClosed
	}
	if s.draftID != draftID {
		return outcomeDraftChanged
	}
	if gen <= s.appliedGen {
		return outcomeStale
	}
	if fetchErr != nil {
		s.lastError = fetchErr.Error()
		s.updatedAt = now
		return outcomeFailed
	}

	s.snapshot = model.NewSnapshot(draftID, picks, gen, now)
	s.appliedGen = gen
	s.lastError = ""
	s.lastRefresh = now
	s.updatedAt = now
	return outcomeApplied
}

// reset points the session at a new draft and drops everything learned about the old one.
// Fetches issued before the reset become stale. Caller must hold mu.
func (s *session) reset(draftID model.DraftID, now time.Time) {
	s.draftID = draftID
	s.draftName = ""
	s.snapshot = nil
	s.appliedGen = s.issuedGen
	s.lastError = ""
	s.lastRefresh = time.Time{}
	s.updatedAt = now
}
