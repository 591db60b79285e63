package factory

import (
	"time"

	"github.com/mcoot/draftboard/internal/dependencies/mocks"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/sleeper"
	"github.com/mcoot/draftboard/internal/storage/memory"
	"github.com/mcoot/draftboard/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked clock and random.
// client is usually a sleeper.NewForTest client pointed at a testutil.FakeSleeperServer.
func NewTestApp(client sleeper.Client, favorites ...string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := draft.DefaultConfig()
	cfg.Favorites = favorites
	app := newWithDependencies(store, mockClock, mockRandom, client, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

func team(s string) *string {
	return &s
}

// TestPlayers is a small roster covering every fantasy position
func TestPlayers() []model.Player {
	return []model.Player{
		{ID: "4034", FirstName: "Christian", LastName: "McCaffrey", Team: team("SF"), Position: model.PositionRB, FantasyPositions: []model.Position{model.PositionRB}},
		{ID: "6794", FirstName: "Justin", LastName: "Jefferson", Team: team("MIN"), Position: model.PositionWR, FantasyPositions: []model.Position{model.PositionWR}},
		{ID: "9509", FirstName: "Bijan", LastName: "Robinson", Team: team("ATL"), Position: model.PositionRB, FantasyPositions: []model.Position{model.PositionRB}},
		{ID: "4046", FirstName: "Patrick", LastName: "Mahomes", Team: team("KC"), Position: model.PositionQB, FantasyPositions: []model.Position{model.PositionQB}},
		{ID: "4881", FirstName: "Travis", LastName: "Kelce", Team: team("KC"), Position: model.PositionTE, FantasyPositions: []model.Position{model.PositionTE}},
		{ID: "4195", FirstName: "Harrison", LastName: "Butker", Team: team("KC"), Position: model.PositionK, FantasyPositions: []model.Position{model.PositionK}},
		{ID: "SF", FirstName: "San Francisco", LastName: "49ers", Team: team("SF"), Position: model.PositionDEF, FantasyPositions: []model.Position{model.PositionDEF}},
	}
}

// TestRankings ranks the test roster plus one player the roster doesn't know
func TestRankings() []model.RankedPlayer {
	return []model.RankedPlayer{
		{Rank: 1, Tier: 1, Name: "Christian McCaffrey", Position: model.PositionRB},
		{Rank: 2, Tier: 1, Name: "Justin Jefferson", Position: model.PositionWR},
		{Rank: 3, Tier: 1, Name: "Bijan Robinson", Position: model.PositionRB},
		{Rank: 4, Tier: 2, Name: "Ja'Marr Chase", Position: model.PositionWR},
		{Rank: 5, Tier: 2, Name: "Patrick Mahomes", Position: model.PositionQB},
		{Rank: 6, Tier: 3, Name: "Travis Kelce", Position: model.PositionTE},
		{Rank: 7, Tier: 4, Name: "San Francisco 49ers", Position: model.PositionDEF},
		{Rank: 8, Tier: 5, Name: "Harrison Butker", Position: model.PositionK},
	}
}

// LoadTestData loads TestPlayers and TestRankings
func (t *TestApp) LoadTestData() error {
	t.RosterService.LoadPlayers(TestPlayers())
	return t.RankingsService.LoadRankings(TestRankings())
}
