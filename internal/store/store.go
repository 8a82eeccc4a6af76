// Package store is the SQLite journal of finished and in-progress games.
//
// Each game records its seed, the seat, the dealt roster in seating order,
// and every log entry as it is appended. The journal is write-only while a
// game runs; replay reads it back and pushes the entries through the same
// visibility filter the agents saw.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/store/migrations"
)

// ErrAlreadyExists is returned when a game ID is reused.
var ErrAlreadyExists = errors.New("game already exists")

// Game is one journaled game.
type Game struct {
	ID     string
	Seed   uint64
	Seat   string
	Mode   string
	Actors []roster.Actor
	// Winner is empty until the game finishes.
	Winner     roster.Faction
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Store persists games in SQLite. It is safe for concurrent use.
type Store struct {
	db *sql.DB
	// writes serializes entry inserts so they land in sequence order.
	writes sync.Mutex
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

// Open opens (creating if needed) the journal at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewValidationError("journal path is required").WithField("store.path")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateGame records a new game and its roster.
func (s *Store) CreateGame(ctx context.Context, g Game) error {
	if g.ID == "" {
		return errors.NewValidationError("game id is required").WithField("id")
	}
	created := g.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create game: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, seed, seat, mode, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, int64(g.Seed), g.Seat, g.Mode, toMillis(created)); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create game: %w", err)
	}
	for i, a := range g.Actors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO actors (game_id, position, name, role) VALUES (?, ?, ?, ?)`,
			g.ID, i, a.Name, string(a.Role)); err != nil {
			return fmt.Errorf("record actor %s: %w", a.Name, err)
		}
	}
	return tx.Commit()
}

// FinishGame records the winner.
func (s *Store) FinishGame(ctx context.Context, id string, winner roster.Faction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET winner = ?, finished_at = ? WHERE id = ?`,
		string(winner), toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFoundError("game", id)
	}
	return nil
}

// AppendEntry stores one log entry.
func (s *Store) AppendEntry(ctx context.Context, gameID string, e actionlog.Entry) error {
	s.writes.Lock()
	defer s.writes.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (game_id, seq, day, phase, actor, kind, content, target, emotion, outcome, recipient, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, e.Seq, e.Day, string(e.Phase), e.Actor, string(e.Kind),
		e.Content, e.Target, e.Emotion, string(e.Outcome), e.Recipient, toMillis(e.Time))
	if err != nil {
		return fmt.Errorf("journal entry %d: %w", e.Seq, err)
	}
	return nil
}

// Sink returns an actionlog.Sink that journals entries for gameID.
func (s *Store) Sink(gameID string) actionlog.Sink {
	return actionlog.SinkFunc(func(ctx context.Context, e actionlog.Entry) error {
		return s.AppendEntry(ctx, gameID, e)
	})
}

// Games lists every journaled game, newest first, without rosters.
func (s *Store) Games(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, seat, mode, winner, created_at, finished_at FROM games ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// LatestGame returns the most recently created game.
func (s *Store) LatestGame(ctx context.Context) (Game, error) {
	games, err := s.Games(ctx)
	if err != nil {
		return Game{}, err
	}
	if len(games) == 0 {
		return Game{}, errors.NewNotFoundError("game", "latest")
	}
	return s.Game(ctx, games[0].ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (Game, error) {
	var (
		g                 Game
		seed              int64
		winner            string
		created, finished int64
	)
	if err := row.Scan(&g.ID, &seed, &g.Seat, &g.Mode, &winner, &created, &finished); err != nil {
		return Game{}, err
	}
	g.Seed = uint64(seed)
	g.Winner = roster.Faction(winner)
	g.CreatedAt = fromMillis(created)
	g.FinishedAt = fromMillis(finished)
	return g, nil
}

// Game returns one game with its roster in seating order. Every actor is
// returned alive; eliminations are derived from the entries.
func (s *Store) Game(ctx context.Context, id string) (Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seed, seat, mode, winner, created_at, finished_at FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, errors.NewNotFoundError("game", id)
	}
	if err != nil {
		return Game{}, fmt.Errorf("get game: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, role FROM actors WHERE game_id = ? ORDER BY position`, id)
	if err != nil {
		return Game{}, fmt.Errorf("get actors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, role string
		if err := rows.Scan(&name, &role); err != nil {
			return Game{}, err
		}
		g.Actors = append(g.Actors, roster.Actor{Name: name, Role: roster.Role(role), Alive: true})
	}
	return g, rows.Err()
}

// Entries returns every journaled entry of a game in sequence order.
func (s *Store) Entries(ctx context.Context, gameID string) ([]actionlog.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, day, phase, actor, kind, content, target, emotion, outcome, recipient, created_at
		 FROM entries WHERE game_id = ? ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []actionlog.Entry
	for rows.Next() {
		var (
			e                 actionlog.Entry
			ph, kind, outcome string
			created           int64
		)
		if err := rows.Scan(&e.Seq, &e.Day, &ph, &e.Actor, &kind, &e.Content, &e.Target,
			&e.Emotion, &outcome, &e.Recipient, &created); err != nil {
			return nil, err
		}
		e.Phase = phase.Phase(ph)
		e.Kind = actionlog.Kind(kind)
		e.Outcome = actionlog.Outcome(outcome)
		e.Time = fromMillis(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
