package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
)

type CategoryStore struct {
	db *sqlx.DB
}

const (
	setWinnerQuery = `
		UPDATE categories SET
		is_revealed = 1,
		winner_nomination_id = ?
		WHERE id = ?
	`
	clearWinnerQuery = `
		UPDATE categories SET
		is_revealed = 0,
		winner_nomination_id = NULL
		WHERE id = ?
	`
)

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) CreateCategory(ctx context.Context, category *awards.Category) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO categories (id, event_id, name, points, sort_order)
        VALUES (:id, :event_id, :name, :points, :sort_order)`, category)
	return err
}

func (s *CategoryStore) CreateNomination(ctx context.Context, nomination *awards.Nomination) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO nominations (id, category_id, person_id, work_id, label)
        VALUES (:id, :category_id, :person_id, :work_id, :label)`, nomination)
	return err
}

func (s *CategoryStore) GetCategory(ctx context.Context, id string) (*awards.Category, error) {
	var category awards.Category
	err := s.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = ?", id)
	return &category, err
}

func (s *CategoryStore) GetCategoryTx(ctx context.Context, tx *sqlx.Tx, id string) (*awards.Category, error) {
	var category awards.Category
	err := tx.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = ?", id)
	return &category, err
}

func (s *CategoryStore) GetCategoriesByEvent(ctx context.Context, eventID string) ([]awards.Category, error) {
	var categories []awards.Category
	err := s.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories WHERE event_id = ? ORDER BY sort_order ASC", eventID)
	return categories, err
}

func (s *CategoryStore) GetNomination(ctx context.Context, id string) (*awards.Nomination, error) {
	var nomination awards.Nomination
	err := s.db.GetContext(ctx, &nomination, "SELECT * FROM nominations WHERE id = ?", id)
	return &nomination, err
}

func (s *CategoryStore) GetNominationTx(ctx context.Context, tx *sqlx.Tx, id string) (*awards.Nomination, error) {
	var nomination awards.Nomination
	err := tx.GetContext(ctx, &nomination, "SELECT * FROM nominations WHERE id = ?", id)
	return &nomination, err
}

func (s *CategoryStore) GetNominationsByCategory(ctx context.Context, categoryID string) ([]awards.Nomination, error) {
	var nominations []awards.Nomination
	err := s.db.SelectContext(ctx, &nominations,
		"SELECT * FROM nominations WHERE category_id = ?", categoryID)
	return nominations, err
}

// SetWinnerTx marks the category revealed and records the winner in a single
// statement so the is_revealed/winner pair can never diverge.
func (s *CategoryStore) SetWinnerTx(ctx context.Context, tx *sqlx.Tx, categoryID, nominationID string) error {
	_, err := tx.ExecContext(ctx, setWinnerQuery, nominationID, categoryID)
	return err
}

func (s *CategoryStore) ClearWinnerTx(ctx context.Context, tx *sqlx.Tx, categoryID string) error {
	_, err := tx.ExecContext(ctx, clearWinnerQuery, categoryID)
	return err
}
