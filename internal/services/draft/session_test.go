package draft

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/draftboard/internal/model"
)

func TestSessionGenerationsAreMonotonic(t *testing.T) {
	s := newSession(&model.Session{Code: "A", DraftID: "d1"})

	g1, ok := s.begin("d1")
	require.True(t, ok)
	g2, _ := s.begin("d1")
	g3, _ := s.begin("d1")
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{g1, g2, g3})
	assert.Equal(t, model.RefreshStateFetching, s.model().State)

	now := time.Now()
	assert.Equal(t, outcomeApplied, s.complete("d1", g3, nil, nil, now))
	assert.Equal(t, outcomeStale, s.complete("d1", g1, []model.Pick{{PickNo: 1}}, nil, now))
	assert.Equal(t, outcomeStale, s.complete("d1", g2, nil, errors.New("late failure"), now))

	assert.Equal(t, uint64(3), s.appliedGen)
	assert.Empty(t, s.lastError, "stale failures are not surfaced")
	assert.Equal(t, model.RefreshStateIdle, s.model().State)
}

func TestSessionFailureLeavesSnapshot(t *testing.T) {
	s := newSession(&model.Session{Code: "A", DraftID: "d1"})
	now := time.Now()

	g1, _ := s.begin("d1")
	s.complete("d1", g1, []model.Pick{{PickNo: 1}}, nil, now)
	before := s.snapshot

	g2, _ := s.begin("d1")
	assert.Equal(t, outcomeFailed, s.complete("d1", g2, nil, errors.New("HTTP error! status: 503"), now.Add(time.Second)))

	assert.Same(t, before, s.snapshot)
	assert.Equal(t, "HTTP error! status: 503", s.lastError)
	assert.Equal(t, uint64(1), s.appliedGen)
	assert.True(t, now.Equal(s.lastRefresh))
}

func TestSessionBeginRefusesOtherDraft(t *testing.T) {
	s := newSession(&model.Session{Code: "A", DraftID: "d1"})

	_, ok := s.begin("d2")
	assert.False(t, ok)
	assert.Equal(t, 0, s.inFlight)
}

func TestSessionResetMakesOutstandingFetchesStale(t *testing.T) {
	s := newSession(&model.Session{Code: "A", DraftID: "d1"})
	now := time.Now()

	g1, _ := s.begin("d1")
	s.complete("d1", g1, []model.Pick{{PickNo: 1}}, nil, now)
	g2, _ := s.begin("d1")

	s.mu.Lock()
	s.reset("d1", now)
	s.mu.Unlock()

	assert.Nil(t, s.snapshot)
	assert.Equal(t, outcomeStale, s.complete("d1", g2, []model.Pick{{PickNo: 2}}, nil, now))
	assert.Nil(t, s.snapshot)

	g3, _ := s.begin("d1")
	assert.Equal(t, outcomeApplied, s.complete("d1", g3, []model.Pick{}, nil, now))
}

func TestSessionClosedDiscardsResults(t *testing.T) {
	s := newSession(&model.Session{Code: "A", DraftID: "d1"})
	g1, _ := s.begin("d1")
	s.closed = true

	assert.Equal(t, outcomeClosed, s.complete("d1", g1, []model.Pick{}, nil, time.Now()))
	assert.Nil(t, s.snapshot)
}

func TestNewSessionContinuesStoredGeneration(t *testing.T) {
	s := newSession(&model.Session{Code: "A", DraftID: "d1", Generation: 41})

	gen, _ := s.begin("d1")
	assert.Equal(t, uint64(42), gen)
}

func TestParseDraftID(t *testing.T) {
	id, err := ParseDraftID("  1124839123541  ")
	require.NoError(t, err)
	assert.Equal(t, model.DraftID("1124839123541"), id)

	for _, bad := range []string{"", "   ", "1/2", "1?x", "a b"} {
		_, err := ParseDraftID(bad)
		assert.ErrorIs(t, err, model.ErrInvalidDraftID, bad)
	}
}
