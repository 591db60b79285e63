package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/draftboard/internal/dependencies/mocks"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/rankings"
	"github.com/mcoot/draftboard/internal/services/roster"
	"github.com/mcoot/draftboard/internal/sleeper"
	"github.com/mcoot/draftboard/internal/sleeper/mocksleeper"
	"github.com/mcoot/draftboard/internal/storage/memory"
	"github.com/mcoot/draftboard/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Publish(ctx context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) ofType(t model.EventType) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func pid(id string) *model.PlayerID {
	p := model.PlayerID(id)
	return &p
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	client     *mocksleeper.Client
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	roster     *roster.Service
	rankings   *rankings.Service
	recorder   *recorder
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.client = &mocksleeper.Client{}
	s.clock = mocks.NewMockClock(time.Date(2025, 8, 30, 19, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.random.QueueCodes("AAAAAA", "BBBBBB", "CCCCCC")

	logger := testutil.NopLogger()
	s.roster = roster.New(s.storage, logger)
	s.roster.LoadPlayers([]model.Player{
		{ID: "100", FirstName: "Ja'Marr", LastName: "Chase", Position: model.PositionWR},
		{ID: "200", FirstName: "Bijan", LastName: "Robinson", Position: model.PositionRB},
	})
	s.rankings = rankings.New(s.storage, logger)
	s.Require().NoError(s.rankings.LoadRankings([]model.RankedPlayer{
		{Rank: 1, Tier: 1, Name: "Ja'Marr Chase", Position: model.PositionWR},
		{Rank: 2, Tier: 1, Name: "Bijan Robinson", Position: model.PositionRB},
		{Rank: 3, Tier: 2, Name: "Puka Nacua", Position: model.PositionWR},
	}))

	s.client.On("Draft", mock.Anything, mock.Anything).Return(&model.DraftInfo{Name: "Test League"}, nil).Maybe()

	s.recorder = &recorder{}
	s.controller = NewController(s.storage, s.client, s.roster, s.rankings, s.clock, s.random, logger, Config{
		PollInterval: time.Minute,
		FetchTimeout: time.Second,
		Favorites:    []string{"Puka Nacua"},
	})
	s.controller.Subscribe(s.recorder)
}

func (s *ControllerSuite) TearDownTest() {
	s.controller.Stop()
}

func (s *ControllerSuite) expectPicks(draftID model.DraftID, picks []model.Pick) *mock.Call {
	return s.client.On("DraftPicks", mock.Anything, draftID).Return(picks, nil)
}

// Session lifecycle

func (s *ControllerSuite) TestCreateSession() {
	session, err := s.controller.CreateSession(s.ctx, " 123 ", "wr")
	s.Require().NoError(err)

	s.Equal(model.SessionCode("AAAAAA"), session.Code)
	s.Equal(model.DraftID("123"), session.DraftID)
	s.Equal(model.PositionWR, session.Filter)
	s.Equal(model.RefreshStateIdle, session.State)

	stored, err := s.storage.GetSession(s.ctx, "AAAAAA")
	s.Require().NoError(err)
	s.Equal(model.DraftID("123"), stored.DraftID)

	s.Len(s.recorder.ofType(model.EventSessionCreated), 1)
}

func (s *ControllerSuite) TestCreateSessionRejectsEmptyDraftID() {
	_, err := s.controller.CreateSession(s.ctx, "  ", "")
	s.ErrorIs(err, model.ErrInvalidDraftID)
}

func (s *ControllerSuite) TestCreateSessionRejectsBadDraftID() {
	_, err := s.controller.CreateSession(s.ctx, "12/../picks", "")
	s.ErrorIs(err, model.ErrInvalidDraftID)
}

func (s *ControllerSuite) TestCreateSessionRejectsBadFilter() {
	_, err := s.controller.CreateSession(s.ctx, "123", "LB")
	s.ErrorIs(err, model.ErrInvalidPosition)
}

func (s *ControllerSuite) TestCreateSessionSkipsTakenCode() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Code: "AAAAAA", DraftID: "old"}))

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	s.Equal(model.SessionCode("BBBBBB"), session.Code)
}

func (s *ControllerSuite) TestGetSessionNotFound() {
	_, err := s.controller.GetSession(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestListSessionsSorted() {
	s.random.Reset()
	s.random.QueueCodes("ZZZZZZ", "MMMMMM")
	_, err := s.controller.CreateSession(s.ctx, "1", "")
	s.Require().NoError(err)
	_, err = s.controller.CreateSession(s.ctx, "2", "")
	s.Require().NoError(err)

	sessions := s.controller.ListSessions(s.ctx)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionCode("MMMMMM"), sessions[0].Code)
	s.Equal(model.SessionCode("ZZZZZZ"), sessions[1].Code)
}

func (s *ControllerSuite) TestDeleteSession() {
	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	s.Require().NoError(s.controller.DeleteSession(s.ctx, session.Code))

	_, err = s.controller.GetSession(s.ctx, session.Code)
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.storage.GetSession(s.ctx, session.Code)
	s.ErrorIs(err, model.ErrSessionNotFound)

	deleted := s.recorder.ofType(model.EventSessionDeleted)
	s.Require().Len(deleted, 1)
	s.Nil(deleted[0].Board)

	s.ErrorIs(s.controller.DeleteSession(s.ctx, session.Code), model.ErrSessionNotFound)
}

// Refresh cycle

func (s *ControllerSuite) TestRefreshAppliesSnapshot() {
	s.expectPicks("123", []model.Pick{
		{PickNo: 1, PlayerID: pid("100")},
		{PickNo: 2, PlayerID: nil},
	})
	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	board, err := s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)

	s.True(board.HasSnapshot)
	s.Equal(uint64(1), board.Generation)
	s.Equal(2, board.PickCount)
	s.Require().Len(board.Picks, 1)
	s.Equal("Ja'Marr Chase", board.Picks[0].Name)
	s.Require().Len(board.Available, 2)
	s.Equal("Bijan Robinson", board.Available[0].Name)
	s.True(board.Available[1].Favorite)
	s.Empty(board.LastError)
	s.True(s.clock.Now().Equal(board.LastRefreshAt))
	s.Equal(2, board.RosterCount)
	s.Equal(3, board.RankingsCount)

	snap, err := s.storage.GetSnapshot(s.ctx, "123")
	s.Require().NoError(err)
	s.Len(snap.Picks, 2)

	s.Len(s.recorder.ofType(model.EventRefreshSucceeded), 1)
}

func (s *ControllerSuite) TestRefreshFailureKeepsPreviousSnapshot() {
	s.expectPicks("123", []model.Pick{{PickNo: 1, PlayerID: pid("100")}}).Once()
	s.client.On("DraftPicks", mock.Anything, model.DraftID("123")).
		Return(nil, &sleeper.FetchError{Kind: sleeper.KindStatus, StatusCode: 500}).Once()

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	_, err = s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)

	board, err := s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err, "a failed fetch is not an API error")

	s.Equal("HTTP error! status: 500", board.LastError)
	s.Equal(uint64(1), board.Generation, "failure does not advance the applied generation")
	s.Require().Len(board.Picks, 1, "previous snapshot is still shown")
	s.Len(s.recorder.ofType(model.EventRefreshFailed), 1)
}

func (s *ControllerSuite) TestSuccessAfterFailureClearsError() {
	s.client.On("DraftPicks", mock.Anything, model.DraftID("123")).
		Return(nil, errors.New("boom")).Once()
	s.expectPicks("123", []model.Pick{}).Once()

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	board, _ := s.controller.Refresh(s.ctx, session.Code)
	s.Equal("boom", board.LastError)
	s.False(board.HasSnapshot)

	board, _ = s.controller.Refresh(s.ctx, session.Code)
	s.Empty(board.LastError)
	s.True(board.HasSnapshot)
}

func (s *ControllerSuite) TestStaleResponseIsDiscarded() {
	started := make(chan struct{})
	release := make(chan struct{})

	// The first fetch is slow and carries the older pick list
	s.client.On("DraftPicks", mock.Anything, model.DraftID("123")).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]model.Pick{{PickNo: 1, PlayerID: pid("100")}}, nil).Once()
	s.expectPicks("123", []model.Pick{
		{PickNo: 1, PlayerID: pid("100")},
		{PickNo: 2, PlayerID: pid("200")},
	}).Once()

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	sess, err := s.controller.get(session.Code)
	s.Require().NoError(err)

	slow := make(chan outcome, 1)
	go func() {
		slow <- s.controller.fetch(s.ctx, sess, "123")
	}()
	<-started

	s.Equal(outcomeApplied, s.controller.fetch(s.ctx, sess, "123"))
	close(release)
	s.Equal(outcomeStale, <-slow)

	board, err := s.controller.Board(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Equal(uint64(2), board.Generation)
	s.Len(board.Picks, 2, "the newer snapshot survives the late response")
	s.Equal(model.RefreshStateIdle, board.State)
}

func (s *ControllerSuite) TestSameSnapshotTwiceGivesIdenticalBoard() {
	picks := []model.Pick{
		{PickNo: 2, PlayerID: pid("200")},
		{PickNo: 1, PlayerID: pid("100")},
	}
	s.expectPicks("123", picks)

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	first, err := s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)
	second, err := s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)

	s.Equal(first.Picks, second.Picks)
	s.Equal(first.Available, second.Available)
	s.Equal(2, picks[0].PickNo, "fetched picks are not reordered in place")
}

// Controls

func (s *ControllerSuite) TestSetFilterDoesNotFetch() {
	s.expectPicks("123", []model.Pick{})
	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	_, err = s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)

	board, err := s.controller.SetFilter(s.ctx, session.Code, "RB")
	s.Require().NoError(err)

	s.Equal(model.PositionRB, board.Filter)
	s.Require().Len(board.Available, 1)
	s.Equal("Bijan Robinson", board.Available[0].Name)
	s.client.AssertNumberOfCalls(s.T(), "DraftPicks", 1)

	stored, err := s.storage.GetSession(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Equal(model.PositionRB, stored.Filter)
	s.Len(s.recorder.ofType(model.EventFilterChanged), 1)
}

func (s *ControllerSuite) TestClearFilter() {
	session, err := s.controller.CreateSession(s.ctx, "123", "QB")
	s.Require().NoError(err)

	board, err := s.controller.SetFilter(s.ctx, session.Code, "")
	s.Require().NoError(err)
	s.Equal(model.Position(""), board.Filter)
	s.Len(board.Available, 3)
}

func (s *ControllerSuite) TestSetFilterInvalid() {
	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	_, err = s.controller.SetFilter(s.ctx, session.Code, "XYZ")
	s.ErrorIs(err, model.ErrInvalidPosition)
}

func (s *ControllerSuite) TestBoardWithFilterLeavesSessionFilter() {
	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	board, err := s.controller.BoardWithFilter(s.ctx, session.Code, "WR")
	s.Require().NoError(err)
	s.Len(board.Available, 2)

	current, err := s.controller.GetSession(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Equal(model.Position(""), current.Filter)
}

func (s *ControllerSuite) TestChangeDraftResetsSnapshot() {
	s.expectPicks("123", []model.Pick{{PickNo: 1, PlayerID: pid("100")}})
	s.expectPicks("456", []model.Pick{})

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	_, err = s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)

	board, err := s.controller.ChangeDraft(s.ctx, session.Code, "456")
	s.Require().NoError(err)

	s.Equal(model.DraftID("456"), board.DraftID)
	s.False(board.HasSnapshot)
	s.Empty(board.Picks)
	s.Len(board.Available, 3)
	s.Len(s.recorder.ofType(model.EventDraftChanged), 1)

	board, err = s.controller.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)
	s.True(board.HasSnapshot)
	s.Equal(model.DraftID("456"), board.DraftID)
}

func (s *ControllerSuite) TestChangeDraftDiscardsInFlightResult() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.client.On("DraftPicks", mock.Anything, model.DraftID("123")).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]model.Pick{{PickNo: 1, PlayerID: pid("100")}}, nil).Once()

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	sess, err := s.controller.get(session.Code)
	s.Require().NoError(err)

	slow := make(chan outcome, 1)
	go func() {
		slow <- s.controller.fetch(s.ctx, sess, "123")
	}()
	<-started

	_, err = s.controller.ChangeDraft(s.ctx, session.Code, "456")
	s.Require().NoError(err)
	close(release)

	s.Equal(outcomeDraftChanged, <-slow)

	board, err := s.controller.Board(s.ctx, session.Code)
	s.Require().NoError(err)
	s.False(board.HasSnapshot)
}

func (s *ControllerSuite) TestChangeDraftInvalid() {
	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)

	_, err = s.controller.ChangeDraft(s.ctx, session.Code, "")
	s.ErrorIs(err, model.ErrInvalidDraftID)
}

// Poller

func (s *ControllerSuite) TestPollerFetchesImmediatelyAndOnTick() {
	s.expectPicks("123", []model.Pick{{PickNo: 1, PlayerID: pid("100")}})

	session, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Start(s.ctx))

	s.Require().Eventually(func() bool {
		return len(s.recorder.ofType(model.EventRefreshSucceeded)) == 1
	}, time.Second, 5*time.Millisecond)

	s.Require().Eventually(func() bool {
		return s.clock.TickerCount() == 1
	}, time.Second, 5*time.Millisecond)
	s.clock.Tick()

	s.Require().Eventually(func() bool {
		return len(s.recorder.ofType(model.EventRefreshSucceeded)) == 2
	}, time.Second, 5*time.Millisecond)

	board, err := s.controller.Board(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Equal(uint64(2), board.Generation)

	s.Eventually(func() bool {
		b, _ := s.controller.Board(s.ctx, session.Code)
		return b.DraftName == "Test League"
	}, time.Second, 5*time.Millisecond)
}

func (s *ControllerSuite) TestPollerKeepsTickingAfterFailure() {
	s.client.On("DraftPicks", mock.Anything, model.DraftID("123")).
		Return(nil, &sleeper.FetchError{Kind: sleeper.KindTransport, Err: errors.New("connection refused")}).Once()
	s.expectPicks("123", []model.Pick{})

	_, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Start(s.ctx))

	s.Require().Eventually(func() bool {
		return len(s.recorder.ofType(model.EventRefreshFailed)) == 1
	}, time.Second, 5*time.Millisecond)

	s.Require().Eventually(func() bool {
		return s.clock.TickerCount() == 1
	}, time.Second, 5*time.Millisecond)
	s.clock.Tick()

	s.Require().Eventually(func() bool {
		return len(s.recorder.ofType(model.EventRefreshSucceeded)) == 1
	}, time.Second, 5*time.Millisecond)
}

func (s *ControllerSuite) TestStopStopsPollers() {
	s.expectPicks("123", []model.Pick{})

	_, err := s.controller.CreateSession(s.ctx, "123", "")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Start(s.ctx))

	s.Require().Eventually(func() bool {
		return s.clock.TickerCount() == 1
	}, time.Second, 5*time.Millisecond)

	s.controller.Stop()
	s.Equal(0, s.clock.TickerCount())
}

func (s *ControllerSuite) TestStartTwiceFails() {
	s.Require().NoError(s.controller.Start(s.ctx))
	s.Error(s.controller.Start(s.ctx))
}

func (s *ControllerSuite) TestStartResumesStoredSessions() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{
		Code:       "RESUME",
		DraftID:    "123",
		Filter:     model.PositionWR,
		Generation: 7,
	}))
	s.Require().NoError(s.storage.SaveSnapshot(s.ctx, model.NewSnapshot("123", []model.Pick{
		{PickNo: 1, PlayerID: pid("100")},
	}, 3, s.clock.Now())))

	// Block the first poll so the restored snapshot is what the board shows
	release := make(chan struct{})
	s.client.On("DraftPicks", mock.Anything, model.DraftID("123")).
		Run(func(args mock.Arguments) { <-release }).
		Return([]model.Pick{}, nil)
	defer close(release)

	s.Require().NoError(s.controller.Start(s.ctx))

	board, err := s.controller.Board(s.ctx, "RESUME")
	s.Require().NoError(err)
	s.True(board.HasSnapshot)
	s.Equal(model.PositionWR, board.Filter)
	s.Equal(uint64(7), board.Generation)
	s.Require().Len(board.Picks, 1)
	s.Require().Len(board.Available, 1, "Chase drafted, Bijan filtered out")
	s.Equal("Puka Nacua", board.Available[0].Name)
}
