// Package sqlite is a single-file storage backend for running the board without Redis.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

const (
	datasetRoster   = "roster"
	datasetRankings = "rankings"
)

// Storage is a SQLite-backed implementation of the storage interface.
// Uses WAL mode so the web and API handlers can read while the poller writes.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open creates or opens a SQLite database at the given path and applies the schema
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// withTx runs fn in a transaction, rolling back on error
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func markLoaded(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, loaded_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET loaded_at = excluded.loaded_at`,
		name, formatTime(time.Now()))
	return err
}

func (s *Storage) isLoaded(ctx context.Context, name string) (bool, error) {
	var loadedAt string
	err := s.db.QueryRowContext(ctx, `SELECT loaded_at FROM datasets WHERE name = ?`, name).Scan(&loadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Roster operations

func (s *Storage) SaveRoster(ctx context.Context, players []model.Player) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO players (player_id, seq, first_name, last_name, team, position, fantasy_positions)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range players {
			positions, err := json.Marshal(p.FantasyPositions)
			if err != nil {
				return err
			}
			var team sql.NullString
			if p.Team != nil {
				team = sql.NullString{String: *p.Team, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, string(p.ID), i, p.FirstName, p.LastName, team, string(p.Position), string(positions)); err != nil {
				return fmt.Errorf("insert player %s: %w", p.ID, err)
			}
		}

		return markLoaded(ctx, tx, datasetRoster)
	})
}

func (s *Storage) GetRoster(ctx context.Context) ([]model.Player, error) {
	loaded, err := s.isLoaded(ctx, datasetRoster)
	if err != nil {
		return nil, err
	}
	if !loaded {
		return nil, model.ErrRosterNotLoaded
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, first_name, last_name, team, position, fantasy_positions
		 FROM players ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var (
			p         model.Player
			team      sql.NullString
			positions string
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &team, &p.Position, &positions); err != nil {
			return nil, err
		}
		if team.Valid {
			t := team.String
			p.Team = &t
		}
		if err := json.Unmarshal([]byte(positions), &p.FantasyPositions); err != nil {
			return nil, fmt.Errorf("decode fantasy positions for %s: %w", p.ID, err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Rankings operations

func (s *Storage) SaveRankings(ctx context.Context, rankings []model.RankedPlayer) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rankings`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO rankings (seq, rank, tier, name, position) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range rankings {
			if _, err := stmt.ExecContext(ctx, i, r.Rank, r.Tier, r.Name, string(r.Position)); err != nil {
				return fmt.Errorf("insert ranking %d: %w", r.Rank, err)
			}
		}

		return markLoaded(ctx, tx, datasetRankings)
	})
}

func (s *Storage) GetRankings(ctx context.Context) ([]model.RankedPlayer, error) {
	loaded, err := s.isLoaded(ctx, datasetRankings)
	if err != nil {
		return nil, err
	}
	if !loaded {
		return nil, model.ErrRankingsNotLoaded
	}

	rows, err := s.db.QueryContext(ctx, `SELECT rank, tier, name, position FROM rankings ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := []model.RankedPlayer{}
	for rows.Next() {
		var r model.RankedPlayer
		if err := rows.Scan(&r.Rank, &r.Tier, &r.Name, &r.Position); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// Session operations

const sessionColumns = `code, draft_id, filter, state, generation, last_refresh_at, last_error, created_at, updated_at`

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   draft_id = excluded.draft_id,
		   filter = excluded.filter,
		   state = excluded.state,
		   generation = excluded.generation,
		   last_refresh_at = excluded.last_refresh_at,
		   last_error = excluded.last_error,
		   updated_at = excluded.updated_at`,
		string(session.Code),
		string(session.DraftID),
		string(session.Filter),
		string(session.State),
		int64(session.Generation),
		formatTime(session.LastRefreshAt),
		session.LastError,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		session                           model.Session
		generation                        int64
		lastRefresh, createdAt, updatedAt string
	)
	if err := row.Scan(
		&session.Code,
		&session.DraftID,
		&session.Filter,
		&session.State,
		&generation,
		&lastRefresh,
		&session.LastError,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	session.Generation = uint64(generation)

	var err error
	if session.LastRefreshAt, err = parseTime(lastRefresh); err != nil {
		return nil, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE code = ?`, string(code))
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	return session, err
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*model.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *Storage) DeleteSession(ctx context.Context, code model.SessionCode) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE code = ?`, string(code))
	return err
}

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	picks := snapshot.Picks
	if picks == nil {
		picks = []model.Pick{}
	}
	data, err := json.Marshal(picks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (draft_id, generation, fetched_at, picks) VALUES (?, ?, ?, ?)
		 ON CONFLICT(draft_id) DO UPDATE SET
		   generation = excluded.generation,
		   fetched_at = excluded.fetched_at,
		   picks = excluded.picks`,
		string(snapshot.DraftID), int64(snapshot.Generation), formatTime(snapshot.FetchedAt), string(data))
	return err
}

func (s *Storage) GetSnapshot(ctx context.Context, draftID model.DraftID) (*model.Snapshot, error) {
	var (
		generation int64
		fetchedAt  string
		data       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT generation, fetched_at, picks FROM snapshots WHERE draft_id = ?`, string(draftID),
	).Scan(&generation, &fetchedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	at, err := parseTime(fetchedAt)
	if err != nil {
		return nil, err
	}

	var picks []model.Pick
	if err := json.Unmarshal([]byte(data), &picks); err != nil {
		return nil, fmt.Errorf("decode picks for %s: %w", draftID, err)
	}

	return &model.Snapshot{
		DraftID:    draftID,
		Picks:      picks,
		Generation: uint64(generation),
		FetchedAt:  at,
	}, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, draftID model.DraftID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE draft_id = ?`, string(draftID))
	return err
}
