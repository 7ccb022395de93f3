package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
)

type PickStore struct {
	db *sqlx.DB
}

const (
	upsertPickQuery = `
		INSERT INTO picks (id, game_id, user_id, category_id, nomination_id, created_at, updated_at)
		VALUES (:id, :game_id, :user_id, :category_id, :nomination_id, :created_at, :updated_at)
		ON CONFLICT (game_id, user_id, category_id) DO UPDATE SET
		nomination_id = excluded.nomination_id,
		updated_at = excluded.updated_at
	`
)

func NewPickStore(db *sqlx.DB) *PickStore {
	return &PickStore{db: db}
}

// UpsertPickTx writes the participant's pick for one category. The unique
// index on (game_id, user_id, category_id) is the serialization point: two
// racing submissions from the same user resolve to the later updated_at
// rather than a duplicate row.
func (s *PickStore) UpsertPickTx(ctx context.Context, tx *sqlx.Tx, pick *awards.Pick) error {
	_, err := tx.NamedExecContext(ctx, upsertPickQuery, pick)
	return err
}

func (s *PickStore) GetPick(ctx context.Context, gameID, userID, categoryID string) (*awards.Pick, error) {
	var pick awards.Pick
	err := s.db.GetContext(ctx, &pick,
		"SELECT * FROM picks WHERE game_id = ? AND user_id = ? AND category_id = ?", gameID, userID, categoryID)
	return &pick, err
}

func (s *PickStore) GetPicksByGame(ctx context.Context, gameID string) ([]awards.Pick, error) {
	var picks []awards.Pick
	err := s.db.SelectContext(ctx, &picks, "SELECT * FROM picks WHERE game_id = ?", gameID)
	return picks, err
}

func (s *PickStore) GetPicksByGameAndUser(ctx context.Context, gameID, userID string) ([]awards.Pick, error) {
	var picks []awards.Pick
	err := s.db.SelectContext(ctx, &picks,
		"SELECT * FROM picks WHERE game_id = ? AND user_id = ?", gameID, userID)
	return picks, err
}
