package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads key into v, returning notFound when the key is missing
func (s *Storage) getJSON(ctx context.Context, key string, v any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Roster operations

func (s *Storage) SaveRoster(ctx context.Context, players []model.Player) error {
	if players == nil {
		players = []model.Player{}
	}
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rosterKey(), data, 0).Err()
}

func (s *Storage) GetRoster(ctx context.Context) ([]model.Player, error) {
	var players []model.Player
	if err := s.getJSON(ctx, rosterKey(), &players, model.ErrRosterNotLoaded); err != nil {
		return nil, err
	}
	return players, nil
}

// Rankings operations

func (s *Storage) SaveRankings(ctx context.Context, rankings []model.RankedPlayer) error {
	if rankings == nil {
		rankings = []model.RankedPlayer{}
	}
	data, err := json.Marshal(rankings)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rankingsKey(), data, 0).Err()
}

func (s *Storage) GetRankings(ctx context.Context) ([]model.RankedPlayer, error) {
	var rankings []model.RankedPlayer
	if err := s.getJSON(ctx, rankingsKey(), &rankings, model.ErrRankingsNotLoaded); err != nil {
		return nil, err
	}
	return rankings, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.Code), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, sessionsIndexKey(), string(session.Code))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	var session model.Session
	if err := s.getJSON(ctx, sessionKey(code), &session, model.ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	codes, err := s.client.SMembers(ctx, sessionsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(codes) == 0 {
		return []*model.Session{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = sessionKey(model.SessionCode(code))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	var expired []any
	for i, val := range values {
		if val == nil {
			expired = append(expired, codes[i])
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(val.(string)), &session); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, &session)
	}

	// Sessions that expired leave their code behind in the index
	if len(expired) > 0 {
		if err := s.client.SRem(ctx, sessionsIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Code < sessions[j].Code
	})
	return sessions, nil
}

func (s *Storage) DeleteSession(ctx context.Context, code model.SessionCode) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(code))
	pipe.SRem(ctx, sessionsIndexKey(), string(code))
	_, err := pipe.Exec(ctx)
	return err
}

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey(snapshot.DraftID), data, s.cfg.SnapshotTTL).Err()
}

func (s *Storage) GetSnapshot(ctx context.Context, draftID model.DraftID) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := s.getJSON(ctx, snapshotKey(draftID), &snapshot, model.ErrSnapshotNotFound); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, draftID model.DraftID) error {
	return s.client.Del(ctx, snapshotKey(draftID)).Err()
}
