package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/draftboard/internal/config"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/sleeper"
	redisstorage "github.com/mcoot/draftboard/internal/storage/redis"
	"github.com/mcoot/draftboard/internal/testutil"
)

const testDraft = "1266518936610930688"

type IntegrationSuite struct {
	suite.Suite
	fake *testutil.FakeSleeperServer
	app  *TestApp
	ctx  context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.fake = testutil.NewFakeSleeperServer()
	s.app = NewTestApp(sleeper.NewForTest(s.fake.URL()), "Bijan Robinson")
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestData())
	s.Require().NoError(s.app.DraftController.Start(s.ctx))
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.DraftController.Stop()
	s.fake.Close()
}

func (s *IntegrationSuite) waitForGeneration(code model.SessionCode, gen uint64) *model.Board {
	var board *model.Board
	s.Require().Eventually(func() bool {
		b, err := s.app.DraftController.Board(s.ctx, code)
		if err != nil {
			return false
		}
		board = b
		return b.Generation >= gen && b.State == model.RefreshStateIdle
	}, 2*time.Second, 10*time.Millisecond)
	return board
}

func names(players []model.AvailablePlayer) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

// Test: a board follows a live draft from the first poll through to deletion
func (s *IntegrationSuite) TestDraftFlow() {
	s.app.MockRandom.QueueCodes("BOARD1")
	s.fake.SetPicks(testDraft, testutil.Picked(1, "4034"))

	session, err := s.app.DraftController.CreateSession(s.ctx, testDraft, "")
	s.Require().NoError(err)
	s.Equal(model.SessionCode("BOARD1"), session.Code)

	// The first poll runs straight away
	board := s.waitForGeneration(session.Code, 1)
	s.True(board.HasSnapshot)
	s.Require().Len(board.Picks, 1)
	s.Equal("Christian McCaffrey", board.Picks[0].Name)
	s.NotContains(names(board.Available), "Christian McCaffrey")
	s.Equal("Not found", board.Available[2].DisplayID(), "Ja'Marr Chase is not in the roster")

	// A tick picks up the next pick
	s.fake.SetPicks(testDraft, testutil.Picked(1, "4034"), testutil.Picked(2, "6794"))
	s.app.MockClock.Tick()
	board = s.waitForGeneration(session.Code, 2)
	s.Require().Len(board.Picks, 2)
	s.Equal(2, board.Picks[0].PickNo, "most recent pick first")

	// Filter without a fetch
	before := s.fake.Requests("/v1/draft/" + testDraft + "/picks")
	board, err = s.app.DraftController.SetFilter(s.ctx, session.Code, "rb")
	s.Require().NoError(err)
	s.Equal([]string{"Bijan Robinson"}, names(board.Available))
	s.True(board.Available[0].Favorite)
	s.Equal(before, s.fake.Requests("/v1/draft/"+testDraft+"/picks"))

	// A failed refresh keeps the last good picks
	s.fake.SetStatus(testDraft, 500)
	board, err = s.app.DraftController.Refresh(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Equal("HTTP error! status: 500", board.LastError)
	s.Len(board.Picks, 2)

	s.Require().NoError(s.app.DraftController.DeleteSession(s.ctx, session.Code))
	_, err = s.app.DraftController.Board(s.ctx, session.Code)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Test: changing the draft resets the board
func (s *IntegrationSuite) TestChangeDraft() {
	s.app.MockRandom.QueueCodes("BOARD2")
	s.fake.SetPicks(testDraft, testutil.Picked(1, "4034"))
	s.fake.SetDraftName("other", "Office League")

	session, err := s.app.DraftController.CreateSession(s.ctx, testDraft, "")
	s.Require().NoError(err)
	s.waitForGeneration(session.Code, 1)

	board, err := s.app.DraftController.ChangeDraft(s.ctx, session.Code, "other")
	s.Require().NoError(err)
	s.Equal(model.DraftID("other"), board.DraftID)
	s.False(board.HasSnapshot)
	s.Empty(board.Picks)

	s.Eventually(func() bool {
		b, err := s.app.DraftController.Board(s.ctx, session.Code)
		return err == nil && b.HasSnapshot && b.DraftName == "Office League"
	}, 2*time.Second, 10*time.Millisecond)

	board, err = s.app.DraftController.Board(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Contains(names(board.Available), "Christian McCaffrey")
}

func (s *IntegrationSuite) TestHubManagerWired() {
	s.NotNil(s.app.HubManager)
	s.NotNil(s.app.SleeperClient)
	s.NotNil(s.app.Streamer)
}

func TestNew_StorageTypes(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, app.Close())

	app, err = New(Config{StorageType: StorageTypeSQLite, SQLitePath: filepath.Join(t.TempDir(), "board.db")})
	require.NoError(t, err)
	assert.NoError(t, app.Close())

	mr := miniredis.RunT(t)
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()
	app, err = New(Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg})
	require.NoError(t, err)
	assert.NoError(t, app.Close())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	assert.Error(t, err)

	_, err = New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)

	_, err = New(Config{StorageType: StorageTypeSQLite})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = config.StorageTypeRedis
	cfg.Storage.Redis.URL = "redis://localhost:6379/1"
	cfg.Draft.PollInterval = 3 * time.Second
	cfg.Draft.Favorites = []string{"Bijan Robinson"}

	fc := FromConfig(cfg, testutil.NopLogger())
	assert.Equal(t, StorageTypeRedis, fc.StorageType)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://localhost:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, 3*time.Second, fc.Draft.PollInterval)
	assert.Equal(t, []string{"Bijan Robinson"}, fc.Draft.Favorites)
	assert.Equal(t, "data/players.json", fc.RosterPath)
	assert.Equal(t, "https://api.sleeper.app", fc.Sleeper.BaseURL)
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "players.json")
	rankingsPath := filepath.Join(dir, "rankings.json")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`{
		"4046": {"player_id": "4046", "first_name": "Patrick", "last_name": "Mahomes", "team": "KC", "position": "QB", "fantasy_positions": ["QB"]}
	}`), 0o644))
	require.NoError(t, os.WriteFile(rankingsPath, []byte(`[
		{"rank": 1, "tier": 1, "name": "Patrick Mahomes", "position": "QB"}
	]`), 0o644))

	dbPath := filepath.Join(dir, "board.db")
	app, err := New(Config{StorageType: StorageTypeSQLite, SQLitePath: dbPath})
	require.NoError(t, err)
	require.NoError(t, app.LoadData(context.Background(), rosterPath, rankingsPath))
	assert.Equal(t, 1, app.RosterService.Count())
	assert.Equal(t, 1, app.RankingsService.Count())
	require.NoError(t, app.Close())

	// Files gone: the copy saved by the first run is used
	require.NoError(t, os.Remove(rosterPath))
	require.NoError(t, os.Remove(rankingsPath))

	app, err = New(Config{StorageType: StorageTypeSQLite, SQLitePath: dbPath})
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.LoadData(context.Background(), rosterPath, rankingsPath))
	assert.True(t, app.RosterService.IsLoaded())
	assert.Equal(t, 1, app.RosterService.Count())
	assert.Equal(t, 1, app.RankingsService.Count())
}

func TestLoadData_NothingAvailable(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, app.LoadData(context.Background(), filepath.Join(dir, "p.json"), filepath.Join(dir, "r.json")))
	assert.False(t, app.RosterService.IsLoaded())
	assert.Equal(t, 0, app.RankingsService.Count())
}

func TestLoadData_CorruptRosterKeepsRankings(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "players.json")
	rankingsPath := filepath.Join(dir, "rankings.json")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`{not json`), 0o644))
	require.NoError(t, os.WriteFile(rankingsPath, []byte(`[
		{"rank": 1, "tier": 1, "name": "Patrick Mahomes", "position": "QB"}
	]`), 0o644))

	err = app.LoadData(context.Background(), rosterPath, rankingsPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load roster")
	assert.NotContains(t, err.Error(), "load rankings")

	assert.False(t, app.RosterService.IsLoaded())
	assert.True(t, app.RankingsService.IsLoaded())
	assert.Equal(t, 1, app.RankingsService.Count())
}

func TestLoadData_CorruptFilesJoinErrors(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "players.json")
	rankingsPath := filepath.Join(dir, "rankings.json")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`{not json`), 0o644))
	require.NoError(t, os.WriteFile(rankingsPath, []byte(`[{"rank": 0, "tier": 1, "name": "X", "position": "QB"}]`), 0o644))

	err = app.LoadData(context.Background(), rosterPath, rankingsPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load roster")
	assert.Contains(t, err.Error(), "load rankings")
	assert.ErrorIs(t, err, model.ErrInvalidRanking)
}
