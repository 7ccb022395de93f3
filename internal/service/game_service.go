package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/store"
)

type GameService struct {
	db         *sqlx.DB
	store      *store.GameStore
	categories *store.CategoryStore
	picks      *store.PickStore
}

func NewGameService(db *sqlx.DB, store *store.GameStore, categories *store.CategoryStore, picks *store.PickStore) *GameService {
	return &GameService{db: db, store: store, categories: categories, picks: picks}
}

const accessCodeLength = 6

func generateAccessCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, accessCodeLength)
	for i := 0; i < accessCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// isUniqueViolation reports whether the insert hit a UNIQUE constraint, the
// signal that a generated access code collided with an existing game.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

const createGameAttempts = 5

// CreateGame makes a new game for an event, starting in setup with a fresh
// unique access code. The unique index on access_code is the arbiter: a
// collision between concurrent creations fails one insert, which regenerates
// and retries rather than surfacing the constraint error.
func (s *GameService) CreateGame(ctx context.Context, eventID uuid.UUID, name string, picksLockAt *time.Time) (*awards.Game, error) {
	if _, err := s.store.GetEvent(ctx, eventID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s does not exist", eventID)
		}
		return nil, err
	}

	for attempt := 0; attempt < createGameAttempts; attempt++ {
		code, err := generateAccessCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate access code: %w", err)
		}

		game := &awards.Game{
			ID:          uuid.New(),
			EventID:     eventID,
			Name:        name,
			Status:      awards.GameSetup,
			AccessCode:  code,
			PicksLockAt: picksLockAt,
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, err
		}
		if err := s.store.CreateGame(ctx, tx, game); err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("failed to create game: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return game, nil
	}

	return nil, errors.New("could not allocate a unique access code")
}

// TransitionStatus moves a game along its lifecycle. Only forward moves are
// accepted; the read and write share a transaction so two concurrent admin
// requests cannot interleave a backward step.
func (s *GameService) TransitionStatus(ctx context.Context, gameID uuid.UUID, newStatus awards.GameStatus) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	game, err := s.store.GetGameTx(ctx, tx, gameID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return awards.ErrGameNotFound
		}
		return fmt.Errorf("failed to get game: %w", err)
	}

	if !awards.CanTransition(game.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", awards.ErrInvalidTransition, game.Status, newStatus)
	}

	if err := s.store.UpdateGameStatusTx(ctx, tx, gameID.String(), newStatus); err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}

	return tx.Commit()
}

type AccessResolution struct {
	GameID    uuid.UUID `json:"game_id"`
	GameName  string    `json:"game_name"`
	EventName string    `json:"event_name"`
	IsMember  bool      `json:"is_member"`
	CanJoin   bool      `json:"can_join"`
}

// ResolveAccessCode maps a human-entered code to the game behind it.
func (s *GameService) ResolveAccessCode(ctx context.Context, code string, userID uuid.UUID) (*AccessResolution, error) {
	code = awards.NormalizeAccessCode(code)
	if !awards.ValidAccessCode(code) {
		return nil, awards.ErrInvalidAccessCode
	}

	game, err := s.store.GetGameByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrInvalidAccessCode
		}
		return nil, fmt.Errorf("failed to look up access code: %w", err)
	}

	event, err := s.store.GetEvent(ctx, game.EventID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	isMember := false
	if _, err := s.store.GetParticipant(ctx, game.ID.String(), userID.String()); err == nil {
		isMember = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	return &AccessResolution{
		GameID:    game.ID,
		GameName:  game.Name,
		EventName: event.Name,
		IsMember:  isMember,
		CanJoin:   game.Joinable(),
	}, nil
}

// JoinGame creates the participant record. Joining a game you already belong
// to succeeds without touching the row; joining does not grant picks, the
// pick ledger gates those independently.
func (s *GameService) JoinGame(ctx context.Context, userID, gameID uuid.UUID) error {
	game, err := s.store.GetGame(ctx, gameID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return awards.ErrGameNotFound
		}
		return fmt.Errorf("failed to get game: %w", err)
	}

	if _, err := s.store.GetParticipant(ctx, gameID.String(), userID.String()); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check membership: %w", err)
	}

	if !game.Joinable() {
		return awards.ErrGameNotJoinable
	}

	participant := &awards.GameParticipant{GameID: gameID, UserID: userID}
	if err := s.store.CreateParticipant(ctx, participant); err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}
	return nil
}

func (s *GameService) GetGamesForUser(ctx context.Context, userID uuid.UUID) ([]awards.Game, error) {
	return s.store.GetGamesForUser(ctx, userID.String())
}

type CategoryWithNominations struct {
	awards.Category
	Nominations []awards.Nomination `json:"nominations"`
}

// GameData is the full game page payload: the game, its event's categories
// with nominations, and the viewer's own picks.
type GameData struct {
	Game       *awards.Game              `json:"game"`
	EventName  string                    `json:"event_name"`
	Categories []CategoryWithNominations `json:"categories"`
	Picks      []awards.Pick             `json:"picks"`
}

// GetGameData assembles everything the game page needs in one call. Only the
// requesting user's picks are included; other players' picks stay hidden
// until categories are revealed and scored.
func (s *GameService) GetGameData(ctx context.Context, gameID, userID uuid.UUID) (*GameData, error) {
	game, err := s.store.GetGame(ctx, gameID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if _, err := s.store.GetParticipant(ctx, gameID.String(), userID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrNotAParticipant
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	event, err := s.store.GetEvent(ctx, game.EventID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	categories, err := s.categories.GetCategoriesByEvent(ctx, game.EventID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	withNominations := make([]CategoryWithNominations, 0, len(categories))
	for _, category := range categories {
		nominations, err := s.categories.GetNominationsByCategory(ctx, category.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to get nominations: %w", err)
		}
		withNominations = append(withNominations, CategoryWithNominations{
			Category:    category,
			Nominations: nominations,
		})
	}

	picks, err := s.picks.GetPicksByGameAndUser(ctx, gameID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get picks: %w", err)
	}

	return &GameData{
		Game:       game,
		EventName:  event.Name,
		Categories: withNominations,
		Picks:      picks,
	}, nil
}
