package roster

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

const rosterJSON = `{
  "4034": {"player_id": "4034", "first_name": "Christian", "last_name": "McCaffrey", "team": "SF", "position": "RB", "fantasy_positions": ["RB"]},
  "7564": {"player_id": "7564", "first_name": "Ja'Marr", "last_name": "Chase", "team": "CIN", "position": "WR", "fantasy_positions": ["WR"]},
  "SF":   {"first_name": "San Francisco", "last_name": "49ers", "team": "SF", "position": "DEF", "fantasy_positions": ["DEF"]},
  "9001": {"player_id": "9001", "first_name": "Free", "last_name": "Agent", "team": null, "position": "WR", "fantasy_positions": null}
}`

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

func (s *ServiceSuite) writeFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ServiceSuite) TestIsNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.Count())

	_, ok := s.service.Resolve("Ja'Marr Chase")
	s.False(ok)
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := s.writeFile("players.json", rosterJSON)

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	s.True(s.service.IsLoaded())
	s.Equal(4, s.service.Count())

	id, ok := s.service.Resolve("Ja'Marr Chase")
	s.Require().True(ok)
	s.Equal(model.PlayerID("7564"), id)

	p, ok := s.service.Lookup("7564")
	s.Require().True(ok)
	s.Equal(model.PositionWR, p.Position)
	s.Equal("CIN", p.TeamName())
}

func (s *ServiceSuite) TestLoadFromFileUsesKeyWhenPlayerIDMissing() {
	path := s.writeFile("players.json", rosterJSON)
	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	p, ok := s.service.Lookup("SF")
	s.Require().True(ok)
	s.Equal("San Francisco 49ers", p.FullName())
	s.True(p.HasFantasyPosition(model.PositionDEF))
}

func (s *ServiceSuite) TestLoadFromFileKeepsNullTeam() {
	path := s.writeFile("players.json", rosterJSON)
	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	p, ok := s.service.Lookup("9001")
	s.Require().True(ok)
	s.Nil(p.Team)
	s.Empty(p.FantasyPositions)
}

func (s *ServiceSuite) TestLoadFromFileSavesToStorage() {
	path := s.writeFile("players.json", rosterJSON)
	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	players, err := s.storage.GetRoster(s.ctx)
	s.Require().NoError(err)
	s.Len(players, 4)
}

func (s *ServiceSuite) TestMissingFileIsDegradedNotError() {
	err := s.service.LoadFromFile(s.ctx, filepath.Join(s.dir, "missing.json"))
	s.Require().NoError(err)

	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.Count())
}

func (s *ServiceSuite) TestMalformedFileIsError() {
	path := s.writeFile("players.json", `[1, 2, 3]`)

	err := s.service.LoadFromFile(s.ctx, path)
	s.Error(err)
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestLoadFromStorage() {
	s.Require().NoError(s.storage.SaveRoster(s.ctx, []model.Player{{ID: "100", FirstName: "Ja'Marr", LastName: "Chase"}}))

	s.Require().NoError(s.service.LoadFromStorage(s.ctx))

	s.True(s.service.IsLoaded())
	id, ok := s.service.Resolve("Ja'Marr Chase")
	s.True(ok)
	s.Equal(model.PlayerID("100"), id)
}

func (s *ServiceSuite) TestLoadFromEmptyStorage() {
	err := s.service.LoadFromStorage(s.ctx)
	s.ErrorIs(err, model.ErrRosterNotLoaded)
}

func (s *ServiceSuite) TestReloadSwapsIndex() {
	s.service.LoadPlayers([]model.Player{{ID: "1", FirstName: "Old", LastName: "Player"}})
	before := s.service.Index()

	s.service.LoadPlayers([]model.Player{{ID: "2", FirstName: "New", LastName: "Player"}})

	_, ok := before.Resolve("Old Player")
	s.True(ok, "previously handed out index is unchanged")

	_, ok = s.service.Resolve("Old Player")
	s.False(ok)
	_, ok = s.service.Resolve("New Player")
	s.True(ok)
}

func (s *ServiceSuite) TestAmbiguous() {
	s.service.LoadPlayers([]model.Player{
		{ID: "20", FirstName: "Josh", LastName: "Allen"},
		{ID: "3", FirstName: "Josh", LastName: "Allen"},
	})

	ambiguous := s.service.Ambiguous()
	s.Require().Len(ambiguous, 1)
	s.Equal([]model.PlayerID{"3", "20"}, ambiguous[0].IDs)
}

func (s *ServiceSuite) TestParseJSONNormalisesDST() {
	players, err := ParseJSON([]byte(`{"DAL": {"first_name": "Dallas", "last_name": "Cowboys", "position": "DST", "fantasy_positions": ["dst"]}}`))
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PositionDEF, players[0].Position)
	s.Equal([]model.Position{model.PositionDEF}, players[0].FantasyPositions)
}
