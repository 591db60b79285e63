// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage"
)

// Suite runs the common storage contract against the backend returned by Storage.
// Backends embed it and set Storage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func pid(id string) *model.PlayerID {
	p := model.PlayerID(id)
	return &p
}

func team(t string) *string {
	return &t
}

// Roster tests

func (s *Suite) TestGetRosterNotLoaded() {
	_, err := s.Storage.GetRoster(s.Ctx)
	s.ErrorIs(err, model.ErrRosterNotLoaded)
}

func (s *Suite) TestSaveAndGetRoster() {
	players := []model.Player{
		{ID: "4034", FirstName: "Christian", LastName: "McCaffrey", Team: team("SF"), Position: model.PositionRB, FantasyPositions: []model.Position{model.PositionRB}},
		{ID: "DAL", FirstName: "Dallas", LastName: "Cowboys", Team: team("DAL"), Position: model.PositionDEF, FantasyPositions: []model.Position{model.PositionDEF}},
		{ID: "9999", FirstName: "Free", LastName: "Agent", Position: model.PositionWR},
	}

	s.Require().NoError(s.Storage.SaveRoster(s.Ctx, players))

	got, err := s.Storage.GetRoster(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal("Christian McCaffrey", got[0].FullName())
	s.Equal("SF", got[0].TeamName())
	s.Equal([]model.Position{model.PositionDEF}, got[1].FantasyPositions)
	s.Nil(got[2].Team)
}

func (s *Suite) TestSaveRosterReplaces() {
	s.Require().NoError(s.Storage.SaveRoster(s.Ctx, []model.Player{{ID: "1", FirstName: "A"}}))
	s.Require().NoError(s.Storage.SaveRoster(s.Ctx, []model.Player{{ID: "2", FirstName: "B"}}))

	got, err := s.Storage.GetRoster(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(model.PlayerID("2"), got[0].ID)
}

func (s *Suite) TestSaveEmptyRosterCountsAsLoaded() {
	s.Require().NoError(s.Storage.SaveRoster(s.Ctx, []model.Player{}))

	got, err := s.Storage.GetRoster(s.Ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

// Rankings tests

func (s *Suite) TestGetRankingsNotLoaded() {
	_, err := s.Storage.GetRankings(s.Ctx)
	s.ErrorIs(err, model.ErrRankingsNotLoaded)
}

func (s *Suite) TestSaveAndGetRankingsKeepsOrder() {
	rankings := []model.RankedPlayer{
		{Rank: 1, Tier: 1, Name: "Christian McCaffrey", Position: model.PositionRB},
		{Rank: 2, Tier: 1, Name: "CeeDee Lamb", Position: model.PositionWR},
		{Rank: 3, Tier: 2, Name: "Tyreek Hill", Position: model.PositionWR},
	}

	s.Require().NoError(s.Storage.SaveRankings(s.Ctx, rankings))

	got, err := s.Storage.GetRankings(s.Ctx)
	s.Require().NoError(err)
	s.Equal(rankings, got)
}

// Session tests

func (s *Suite) TestSaveAndGetSession() {
	now := time.Date(2025, 8, 30, 19, 0, 0, 0, time.UTC)
	session := &model.Session{
		Code:          "ABCD",
		DraftID:       "1234567890",
		Filter:        model.PositionWR,
		State:         model.RefreshStateIdle,
		Generation:    4,
		LastRefreshAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	got, err := s.Storage.GetSession(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(session.DraftID, got.DraftID)
	s.Equal(session.Filter, got.Filter)
	s.Equal(uint64(4), got.Generation)
	s.True(now.Equal(got.CreatedAt))
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, "NOPE")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestSaveSessionOverwrites() {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, &model.Session{Code: "ABCD", DraftID: "1"}))
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, &model.Session{Code: "ABCD", DraftID: "2", Filter: model.PositionQB}))

	got, err := s.Storage.GetSession(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.DraftID("2"), got.DraftID)
	s.Equal(model.PositionQB, got.Filter)
}

func (s *Suite) TestListSessionsSortedByCode() {
	for _, code := range []model.SessionCode{"ZZZZ", "AAAA", "MMMM"} {
		s.Require().NoError(s.Storage.SaveSession(s.Ctx, &model.Session{Code: code, DraftID: "1"}))
	}

	sessions, err := s.Storage.ListSessions(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 3)
	s.Equal(model.SessionCode("AAAA"), sessions[0].Code)
	s.Equal(model.SessionCode("MMMM"), sessions[1].Code)
	s.Equal(model.SessionCode("ZZZZ"), sessions[2].Code)
}

func (s *Suite) TestListSessionsEmpty() {
	sessions, err := s.Storage.ListSessions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *Suite) TestDeleteSession() {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, &model.Session{Code: "ABCD", DraftID: "1"}))

	s.Require().NoError(s.Storage.DeleteSession(s.Ctx, "ABCD"))

	_, err := s.Storage.GetSession(s.Ctx, "ABCD")
	s.ErrorIs(err, model.ErrSessionNotFound)

	sessions, err := s.Storage.ListSessions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *Suite) TestDeleteMissingSessionIsNoop() {
	s.NoError(s.Storage.DeleteSession(s.Ctx, "NOPE"))
}

// Snapshot tests

func (s *Suite) TestSaveAndGetSnapshot() {
	fetched := time.Date(2025, 8, 30, 19, 5, 0, 0, time.UTC)
	snap := model.NewSnapshot("1234567890", []model.Pick{
		{PickNo: 1, Round: 1, DraftSlot: 1, PlayerID: pid("4034")},
		{PickNo: 2, Round: 1, DraftSlot: 2, PlayerID: nil},
		{PickNo: 3, Round: 1, DraftSlot: 3, PlayerID: pid("6794")},
	}, 7, fetched)

	s.Require().NoError(s.Storage.SaveSnapshot(s.Ctx, snap))

	got, err := s.Storage.GetSnapshot(s.Ctx, "1234567890")
	s.Require().NoError(err)
	s.Equal(uint64(7), got.Generation)
	s.True(fetched.Equal(got.FetchedAt))
	s.Require().Len(got.Picks, 3)

	id, ok := got.Picks[0].Player()
	s.True(ok)
	s.Equal(model.PlayerID("4034"), id)

	_, ok = got.Picks[1].Player()
	s.False(ok)
	s.Equal(2, got.Picks[1].PickNo)
}

func (s *Suite) TestSaveSnapshotReplacesPrevious() {
	s.Require().NoError(s.Storage.SaveSnapshot(s.Ctx, model.NewSnapshot("d1", []model.Pick{{PickNo: 1, PlayerID: pid("1")}}, 1, time.Now())))
	s.Require().NoError(s.Storage.SaveSnapshot(s.Ctx, model.NewSnapshot("d1", []model.Pick{{PickNo: 1, PlayerID: pid("1")}, {PickNo: 2, PlayerID: pid("2")}}, 2, time.Now())))

	got, err := s.Storage.GetSnapshot(s.Ctx, "d1")
	s.Require().NoError(err)
	s.Equal(uint64(2), got.Generation)
	s.Len(got.Picks, 2)
}

func (s *Suite) TestGetSnapshotNotFound() {
	_, err := s.Storage.GetSnapshot(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}

func (s *Suite) TestDeleteSnapshot() {
	s.Require().NoError(s.Storage.SaveSnapshot(s.Ctx, model.NewSnapshot("d1", nil, 1, time.Now())))

	s.Require().NoError(s.Storage.DeleteSnapshot(s.Ctx, "d1"))

	_, err := s.Storage.GetSnapshot(s.Ctx, "d1")
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}

func (s *Suite) TestSnapshotsAreIsolatedPerDraft() {
	s.Require().NoError(s.Storage.SaveSnapshot(s.Ctx, model.NewSnapshot("d1", []model.Pick{{PickNo: 1, PlayerID: pid("1")}}, 1, time.Now())))
	s.Require().NoError(s.Storage.SaveSnapshot(s.Ctx, model.NewSnapshot("d2", []model.Pick{}, 3, time.Now())))

	d1, err := s.Storage.GetSnapshot(s.Ctx, "d1")
	s.Require().NoError(err)
	s.Len(d1.Picks, 1)

	d2, err := s.Storage.GetSnapshot(s.Ctx, "d2")
	s.Require().NoError(err)
	s.Empty(d2.Picks)
}
