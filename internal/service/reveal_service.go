package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/metrics"
	"github.com/pickemparty/pickem-app/internal/store"
)

// Broadcaster fans a leaderboard snapshot out to a game's room. The hub
// satisfies this; reveal tests plug in a recording fake.
type Broadcaster interface {
	BroadcastLeaderboard(gameID uuid.UUID, players []awards.LeaderboardPlayer)
}

type RevealService struct {
	db          *sqlx.DB
	categories  *store.CategoryStore
	games       *store.GameStore
	leaderboard *LeaderboardService
	broadcaster Broadcaster
}

func NewRevealService(db *sqlx.DB, categories *store.CategoryStore, games *store.GameStore, leaderboard *LeaderboardService, broadcaster Broadcaster) *RevealService {
	return &RevealService{
		db:          db,
		categories:  categories,
		games:       games,
		leaderboard: leaderboard,
		broadcaster: broadcaster,
	}
}

// MarkWinner records the winning nomination for a category and flips it to
// revealed in the same statement. Re-marking the same winner is a no-op
// success. The reveal commits before any broadcasting starts, so a broken
// subscriber can never fail or delay the admin's action.
func (s *RevealService) MarkWinner(ctx context.Context, categoryID, nominationID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	category, err := s.categories.GetCategoryTx(ctx, tx, categoryID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return awards.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	nomination, err := s.categories.GetNominationTx(ctx, tx, nominationID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return awards.ErrNominationNotFound
		}
		return fmt.Errorf("failed to get nomination: %w", err)
	}
	if nomination.CategoryID != categoryID {
		return awards.ErrNominationCategoryMismatch
	}

	if err := s.categories.SetWinnerTx(ctx, tx, categoryID.String(), nominationID.String()); err != nil {
		return fmt.Errorf("failed to set winner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.WinnersRevealed.Inc()
	go s.recomputeAndBroadcast(context.WithoutCancel(ctx), category.EventID)
	return nil
}

// ClearWinner un-reveals a category, e.g. after the admin marked the wrong
// nomination. Clearing an already-cleared category succeeds.
func (s *RevealService) ClearWinner(ctx context.Context, categoryID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	category, err := s.categories.GetCategoryTx(ctx, tx, categoryID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return awards.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	if err := s.categories.ClearWinnerTx(ctx, tx, categoryID.String()); err != nil {
		return fmt.Errorf("failed to clear winner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.WinnersRevealed.Inc()
	go s.recomputeAndBroadcast(context.WithoutCancel(ctx), category.EventID)
	return nil
}

// recomputeAndBroadcast pushes a fresh leaderboard to every game of the
// event. Best effort: failures are logged and never reach the caller of
// MarkWinner/ClearWinner.
func (s *RevealService) recomputeAndBroadcast(ctx context.Context, eventID uuid.UUID) {
	games, err := s.games.GetGamesByEvent(ctx, eventID.String())
	if err != nil {
		slog.Error("leaderboard broadcast: failed to list games", "event_id", eventID, "error", err)
		return
	}

	for _, game := range games {
		players, err := s.leaderboard.ForGame(ctx, game.ID, uuid.Nil)
		if err != nil {
			slog.Error("leaderboard broadcast: recompute failed", "game_id", game.ID, "error", err)
			continue
		}
		s.broadcaster.BroadcastLeaderboard(game.ID, players)
	}
}
