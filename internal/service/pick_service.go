package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/metrics"
	"github.com/pickemparty/pickem-app/internal/store"
)

type PickService struct {
	db         *sqlx.DB
	games      *store.GameStore
	categories *store.CategoryStore
	picks      *store.PickStore
}

func NewPickService(db *sqlx.DB, games *store.GameStore, categories *store.CategoryStore, picks *store.PickStore) *PickService {
	return &PickService{db: db, games: games, categories: categories, picks: picks}
}

// SubmitPick records the participant's choice for one category of one game.
// Preconditions run in a fixed order and the first failure wins:
// participant, picks-open, category-in-event, nomination-in-category.
// The write is an upsert, so re-picking overwrites with no duplicate row and
// no audit trail. Submitting a pick never triggers a broadcast; scores only
// change on reveal.
func (s *PickService) SubmitPick(ctx context.Context, userID, gameID, categoryID, nominationID uuid.UUID, now time.Time) (*awards.Pick, error) {
	game, err := s.games.GetGame(ctx, gameID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if _, err := s.games.GetParticipant(ctx, gameID.String(), userID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrNotAParticipant
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	// Wall-clock gate, checked per write. Never cache this.
	if !game.PicksOpen(now) {
		return nil, awards.ErrPicksLocked
	}

	category, err := s.categories.GetCategory(ctx, categoryID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category.EventID != game.EventID {
		return nil, awards.ErrCategoryNotInGame
	}

	nomination, err := s.categories.GetNomination(ctx, nominationID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrNominationNotFound
		}
		return nil, fmt.Errorf("failed to get nomination: %w", err)
	}
	if nomination.CategoryID != categoryID {
		return nil, awards.ErrNominationNotInCategory
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	pick := &awards.Pick{
		ID:           uuid.New(),
		GameID:       gameID,
		UserID:       userID,
		CategoryID:   categoryID,
		NominationID: nominationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.picks.UpsertPickTx(ctx, tx, pick); err != nil {
		return nil, fmt.Errorf("failed to save pick: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.PicksSubmitted.Inc()
	return pick, nil
}

// GetPicksForUser returns the participant's own picks for a game, used by
// the game page payload.
func (s *PickService) GetPicksForUser(ctx context.Context, gameID, userID uuid.UUID) ([]awards.Pick, error) {
	return s.picks.GetPicksByGameAndUser(ctx, gameID.String(), userID.String())
}
