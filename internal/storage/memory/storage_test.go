package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestGetSessionReturnsCopy() {
	s.Require().NoError(s.storage.SaveSession(s.Ctx, &model.Session{Code: "ABCD", DraftID: "1"}))

	got, err := s.storage.GetSession(s.Ctx, "ABCD")
	s.Require().NoError(err)
	got.DraftID = "mutated"

	again, err := s.storage.GetSession(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.DraftID("1"), again.DraftID)
}

func (s *StorageSuite) TestSaveRosterCopiesInput() {
	players := []model.Player{{ID: "1", FirstName: "A"}}
	s.Require().NoError(s.storage.SaveRoster(s.Ctx, players))

	players[0].FirstName = "mutated"

	got, err := s.storage.GetRoster(s.Ctx)
	s.Require().NoError(err)
	s.Equal("A", got[0].FirstName)
}

func (s *StorageSuite) TestSnapshotPicksAreCopied() {
	picks := []model.Pick{{PickNo: 1}}
	s.Require().NoError(s.storage.SaveSnapshot(s.Ctx, &model.Snapshot{DraftID: "d1", Picks: picks, Generation: 1}))

	picks[0].PickNo = 99

	got, err := s.storage.GetSnapshot(s.Ctx, "d1")
	s.Require().NoError(err)
	s.Equal(1, got.Picks[0].PickNo)
}
