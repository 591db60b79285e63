package rankings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage/memory"
	"github.com/mcoot/draftboard/internal/testutil"
)

const rankingsJSON = `[
  {"rank": 1, "tier": 1, "name": "Christian McCaffrey", "position": "RB"},
  {"rank": 2, "tier": 1, "name": "CeeDee Lamb", "position": "WR"},
  {"rank": 3, "tier": 2, "name": " Tyreek Hill ", "position": "WR"},
  {"rank": 4, "tier": 2, "name": "San Francisco 49ers", "position": "DST"}
]`

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
	dir     string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
}

func (s *ServiceSuite) writeFile(content string) string {
	path := filepath.Join(s.dir, "rankings.json")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ServiceSuite) TestIsNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.Count())
	s.Empty(s.service.All())
}

func (s *ServiceSuite) TestLoadFromFile() {
	s.Require().NoError(s.service.LoadFromFile(s.ctx, s.writeFile(rankingsJSON)))

	s.True(s.service.IsLoaded())
	s.Equal(4, s.service.Count())

	all := s.service.All()
	s.Equal("Christian McCaffrey", all[0].Name)
	s.Equal(" Tyreek Hill ", all[2].Name, "names are kept as written")
	s.Equal(model.PositionDEF, all[3].Position, "DST becomes DEF")
}

func (s *ServiceSuite) TestLoadFromFileSavesToStorage() {
	s.Require().NoError(s.service.LoadFromFile(s.ctx, s.writeFile(rankingsJSON)))

	stored, err := s.storage.GetRankings(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.service.All(), stored)
}

func (s *ServiceSuite) TestMissingFileIsDegradedNotError() {
	s.Require().NoError(s.service.LoadFromFile(s.ctx, filepath.Join(s.dir, "nope.json")))

	s.False(s.service.IsLoaded())
	s.Empty(s.service.All())
}

func (s *ServiceSuite) TestMalformedFileIsError() {
	s.Error(s.service.LoadFromFile(s.ctx, s.writeFile(`{"rank": 1}`)))
}

func (s *ServiceSuite) TestDuplicateRankRejected() {
	err := s.service.LoadRankings([]model.RankedPlayer{
		{Rank: 1, Tier: 1, Name: "A", Position: model.PositionQB},
		{Rank: 1, Tier: 1, Name: "B", Position: model.PositionQB},
	})
	s.ErrorIs(err, model.ErrInvalidRanking)
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestNonPositiveRankRejected() {
	err := s.service.LoadRankings([]model.RankedPlayer{{Rank: 0, Tier: 1, Name: "A"}})
	s.ErrorIs(err, model.ErrInvalidRanking)
}

func (s *ServiceSuite) TestNonPositiveTierRejected() {
	err := s.service.LoadRankings([]model.RankedPlayer{{Rank: 1, Tier: 0, Name: "A"}})
	s.ErrorIs(err, model.ErrInvalidRanking)
}

func (s *ServiceSuite) TestOutOfOrderListKeepsListOrder() {
	s.Require().NoError(s.service.LoadRankings([]model.RankedPlayer{
		{Rank: 2, Tier: 1, Name: "Second"},
		{Rank: 1, Tier: 1, Name: "First"},
	}))

	all := s.service.All()
	s.Equal("Second", all[0].Name)
	s.Equal("First", all[1].Name)
}

func (s *ServiceSuite) TestAllReturnsCopy() {
	s.Require().NoError(s.service.LoadRankings([]model.RankedPlayer{{Rank: 1, Tier: 1, Name: "A"}}))

	all := s.service.All()
	all[0].Name = "mutated"

	s.Equal("A", s.service.All()[0].Name)
}

func (s *ServiceSuite) TestPositionsInDisplayOrder() {
	s.Require().NoError(s.service.LoadFromFile(s.ctx, s.writeFile(rankingsJSON)))

	s.Equal([]model.Position{model.PositionRB, model.PositionWR, model.PositionDEF}, s.service.Positions())
}

func (s *ServiceSuite) TestLoadFromStorage() {
	s.Require().NoError(s.storage.SaveRankings(s.ctx, []model.RankedPlayer{{Rank: 1, Tier: 1, Name: "A", Position: model.PositionK}}))

	s.Require().NoError(s.service.LoadFromStorage(s.ctx))
	s.Equal(1, s.service.Count())
}

func (s *ServiceSuite) TestLoadFromEmptyStorage() {
	s.ErrorIs(s.service.LoadFromStorage(s.ctx), model.ErrRankingsNotLoaded)
}
