package rankings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage"
)

// Service owns the currently loaded ranking list
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu       sync.RWMutex
	rankings []model.RankedPlayer
	loaded   bool
}

// New creates a new rankings Service with an empty list
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "rankings")),
	}
}

// ParseJSON decodes a rankings file: a JSON array of {rank, tier, name, position}
func ParseJSON(data []byte) ([]model.RankedPlayer, error) {
	var rankings []model.RankedPlayer
	if err := json.Unmarshal(data, &rankings); err != nil {
		return nil, fmt.Errorf("decode rankings: %w", err)
	}
	for i := range rankings {
		if p, err := model.ParsePosition(string(rankings[i].Position)); err == nil {
			rankings[i].Position = p
		}
	}
	return rankings, nil
}

// Validate checks that ranks are positive and unique and tiers are positive
func Validate(rankings []model.RankedPlayer) error {
	seen := make(map[int]string, len(rankings))
	for i, r := range rankings {
		if r.Rank <= 0 {
			return fmt.Errorf("%w: entry %d (%q) has rank %d", model.ErrInvalidRanking, i, r.Name, r.Rank)
		}
		if r.Tier <= 0 {
			return fmt.Errorf("%w: entry %d (%q) has tier %d", model.ErrInvalidRanking, i, r.Name, r.Tier)
		}
		if other, dup := seen[r.Rank]; dup {
			return fmt.Errorf("%w: rank %d used by both %q and %q", model.ErrInvalidRanking, r.Rank, other, r.Name)
		}
		seen[r.Rank] = r.Name
	}
	return nil
}

// LoadFromFile loads the ranking list from a JSON file and saves it to storage.
// A missing file leaves the service with an empty list and is not an error.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("rankings file not found, continuing with empty rankings",
			slog.String("path", path))
		s.set(nil, false)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read rankings %s: %w", path, err)
	}

	rankings, err := ParseJSON(data)
	if err != nil {
		return err
	}
	if err := Validate(rankings); err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveRankings(ctx, rankings); err != nil {
		return err
	}

	s.load(rankings)
	return nil
}

// LoadFromStorage loads the ranking list previously saved to storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	rankings, err := s.storage.GetRankings(ctx)
	if err != nil {
		return err
	}
	return s.LoadRankings(rankings)
}

// LoadRankings validates and loads a ranking list directly (useful for testing)
func (s *Service) LoadRankings(rankings []model.RankedPlayer) error {
	if err := Validate(rankings); err != nil {
		return err
	}
	s.load(append([]model.RankedPlayer(nil), rankings...))
	return nil
}

func (s *Service) load(rankings []model.RankedPlayer) {
	// Out-of-order input is kept as given; list order is display order
	for i := 1; i < len(rankings); i++ {
		prev, cur := rankings[i-1], rankings[i]
		if cur.Rank < prev.Rank {
			s.logger.Warn("rankings not in rank order",
				slog.Int("index", i),
				slog.Int("rank", cur.Rank),
				slog.Int("previous_rank", prev.Rank))
		}
		if cur.Tier < prev.Tier {
			s.logger.Warn("tier decreases as rank worsens",
				slog.String("name", cur.Name),
				slog.Int("tier", cur.Tier),
				slog.Int("previous_tier", prev.Tier))
		}
	}
	s.logger.Info("rankings loaded", slog.Int("players", len(rankings)))
	s.set(rankings, true)
}

func (s *Service) set(rankings []model.RankedPlayer, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankings = rankings
	s.loaded = loaded
}

// All returns a copy of the ranking list in list order
func (s *Service) All() []model.RankedPlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.RankedPlayer(nil), s.rankings...)
}

// Positions returns the fantasy positions present in the list, in display order
func (s *Service) Positions() []model.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	present := make(map[model.Position]bool)
	for _, r := range s.rankings {
		present[r.Position] = true
	}

	var out []model.Position
	for _, p := range model.FantasyPositions {
		if present[p] {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of ranked players
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rankings)
}

// IsLoaded returns whether a ranking list has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
