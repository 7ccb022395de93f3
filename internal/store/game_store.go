package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
	users "github.com/pickemparty/pickem-app/internal/user"
)

type GameStore struct {
	db *sqlx.DB
}

func NewGameStore(db *sqlx.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) CreateEvent(ctx context.Context, event *awards.Event) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO events (id, name) VALUES (:id, :name)`, event)
	return err
}

func (s *GameStore) GetEvent(ctx context.Context, id string) (*awards.Event, error) {
	var event awards.Event
	err := s.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = ?", id)
	return &event, err
}

func (s *GameStore) CreateGame(ctx context.Context, tx *sqlx.Tx, game *awards.Game) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO games (id, event_id, name, status, access_code, picks_lock_at)
        VALUES (:id, :event_id, :name, :status, :access_code, :picks_lock_at)`, game)
	return err
}

func (s *GameStore) GetGame(ctx context.Context, id string) (*awards.Game, error) {
	var game awards.Game
	err := s.db.GetContext(ctx, &game, "SELECT * FROM games WHERE id = ?", id)
	return &game, err
}

func (s *GameStore) GetGameTx(ctx context.Context, tx *sqlx.Tx, id string) (*awards.Game, error) {
	var game awards.Game
	err := tx.GetContext(ctx, &game, "SELECT * FROM games WHERE id = ?", id)
	return &game, err
}

func (s *GameStore) GetGameByAccessCode(ctx context.Context, code string) (*awards.Game, error) {
	var game awards.Game
	err := s.db.GetContext(ctx, &game, "SELECT * FROM games WHERE access_code = ?", code)
	return &game, err
}

func (s *GameStore) GetGamesByEvent(ctx context.Context, eventID string) ([]awards.Game, error) {
	var games []awards.Game
	err := s.db.SelectContext(ctx, &games, "SELECT * FROM games WHERE event_id = ? ORDER BY created_at ASC", eventID)
	return games, err
}

func (s *GameStore) GetGamesForUser(ctx context.Context, userID string) ([]awards.Game, error) {
	var games []awards.Game
	err := s.db.SelectContext(ctx, &games, `SELECT g.* FROM games g
        JOIN game_participants gp ON gp.game_id = g.id
        WHERE gp.user_id = ? ORDER BY g.created_at DESC`, userID)
	return games, err
}

func (s *GameStore) UpdateGameStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status awards.GameStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE games SET status = ? WHERE id = ?", status, id)
	return err
}

// CreateParticipant inserts the join record. A concurrent duplicate insert
// is swallowed by the conflict clause, so joining twice is a no-op.
func (s *GameStore) CreateParticipant(ctx context.Context, participant *awards.GameParticipant) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO game_participants (game_id, user_id)
        VALUES (:game_id, :user_id)
        ON CONFLICT (game_id, user_id) DO NOTHING`, participant)
	return err
}

func (s *GameStore) GetParticipant(ctx context.Context, gameID, userID string) (*awards.GameParticipant, error) {
	var participant awards.GameParticipant
	err := s.db.GetContext(ctx, &participant,
		"SELECT * FROM game_participants WHERE game_id = ? AND user_id = ?", gameID, userID)
	return &participant, err
}

// GetParticipantUsers returns the user records of everyone who joined the
// game, the population of its leaderboard.
func (s *GameStore) GetParticipantUsers(ctx context.Context, gameID string) ([]users.User, error) {
	var list []users.User
	err := s.db.SelectContext(ctx, &list, `SELECT u.* FROM users u
        JOIN game_participants gp ON gp.user_id = u.id
        WHERE gp.game_id = ? ORDER BY gp.joined_at ASC`, gameID)
	return list, err
}
