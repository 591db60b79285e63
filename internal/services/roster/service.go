package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage"
)

// Service owns the currently loaded roster index
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	index  *Index
	loaded bool
}

// New creates a new roster Service with an empty index
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "roster")),
		index:   NewIndex(nil),
	}
}

// entry is one value of the roster file, keyed by player identifier
type entry struct {
	PlayerID         string   `json:"player_id"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Team             *string  `json:"team"`
	Position         *string  `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
}

// ParseJSON decodes a roster file: a JSON object keyed by player identifier.
// A missing player_id falls back to the object key.
func ParseJSON(data []byte) ([]model.Player, error) {
	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessID(model.PlayerID(keys[i]), model.PlayerID(keys[j]))
	})

	players := make([]model.Player, 0, len(raw))
	for _, key := range keys {
		e := raw[key]
		id := e.PlayerID
		if id == "" {
			id = key
		}
		p := model.Player{
			ID:        model.PlayerID(id),
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Team:      e.Team,
		}
		if e.Position != nil {
			p.Position = normalizePosition(*e.Position)
		}
		for _, fp := range e.FantasyPositions {
			p.FantasyPositions = append(p.FantasyPositions, normalizePosition(fp))
		}
		players = append(players, p)
	}
	return players, nil
}

// normalizePosition canonicalises known fantasy positions and keeps anything else as-is
func normalizePosition(s string) model.Position {
	if p, err := model.ParsePosition(s); err == nil {
		return p
	}
	return model.Position(strings.ToUpper(strings.TrimSpace(s)))
}

// LoadFromFile loads the roster from a JSON file and saves it to storage.
// A missing file leaves the service with an empty index and is not an error.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("roster file not found, continuing with empty roster",
			slog.String("path", path))
		s.setIndex(NewIndex(nil), false)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read roster %s: %w", path, err)
	}

	players, err := ParseJSON(data)
	if err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveRoster(ctx, players); err != nil {
		return err
	}

	s.LoadPlayers(players)
	return nil
}

// LoadFromStorage loads the roster previously saved to storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	players, err := s.storage.GetRoster(ctx)
	if err != nil {
		return err
	}
	s.LoadPlayers(players)
	return nil
}

// LoadPlayers replaces the index with one built from players
func (s *Service) LoadPlayers(players []model.Player) {
	idx := NewIndex(players)
	for _, a := range idx.Ambiguous() {
		s.logger.Warn("ambiguous player name, resolving to lowest id",
			slog.String("name", a.Name),
			slog.Any("ids", a.IDs),
			slog.String("resolved", string(a.IDs[0])))
	}
	s.logger.Info("roster loaded",
		slog.Int("players", idx.Len()),
		slog.Int("ambiguous_names", len(idx.ambiguous)))
	s.setIndex(idx, true)
}

func (s *Service) setIndex(idx *Index, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
	s.loaded = loaded
}

// Index returns the current index. The returned value never changes; a reload swaps in a new one.
func (s *Service) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Lookup returns the player with the given identifier
func (s *Service) Lookup(id model.PlayerID) (*model.Player, bool) {
	return s.Index().Lookup(id)
}

// Resolve maps a display name to a player identifier
func (s *Service) Resolve(name string) (model.PlayerID, bool) {
	return s.Index().Resolve(name)
}

// Ambiguous lists the full names shared by more than one player
func (s *Service) Ambiguous() []AmbiguousName {
	return s.Index().Ambiguous()
}

// Count returns the number of players in the roster
func (s *Service) Count() int {
	return s.Index().Len()
}

// IsLoaded returns whether a roster has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
