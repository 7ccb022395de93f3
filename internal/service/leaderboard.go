package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/store"
	users "github.com/pickemparty/pickem-app/internal/user"
)

type LeaderboardService struct {
	db         *sqlx.DB
	games      *store.GameStore
	categories *store.CategoryStore
	picks      *store.PickStore
}

func NewLeaderboardService(db *sqlx.DB, games *store.GameStore, categories *store.CategoryStore, picks *store.PickStore) *LeaderboardService {
	return &LeaderboardService{db: db, games: games, categories: categories, picks: picks}
}

// CalculateLeaderboard scores every participant against the revealed
// winners and returns the ranked snapshot. It is a pure function of its
// inputs; every recompute is from scratch, there is no incremental path.
//
// Ties share a rank (competition ranking: 120,100,100,80 -> 1,2,2,4) and
// sort by user id ascending so the output order is deterministic.
func CalculateLeaderboard(participants []users.User, picks []awards.Pick, categories []awards.Category) []awards.LeaderboardPlayer {
	pickedNomination := make(map[uuid.UUID]map[uuid.UUID]uuid.UUID, len(participants))
	for _, p := range picks {
		byCategory := pickedNomination[p.UserID]
		if byCategory == nil {
			byCategory = make(map[uuid.UUID]uuid.UUID)
			pickedNomination[p.UserID] = byCategory
		}
		byCategory[p.CategoryID] = p.NominationID
	}

	players := make([]awards.LeaderboardPlayer, 0, len(participants))
	for _, participant := range participants {
		player := awards.LeaderboardPlayer{
			UserID:    participant.ID,
			Username:  participant.Username,
			Email:     participant.Email,
			AvatarURL: participant.AvatarURL,
		}
		for _, category := range categories {
			if !category.IsRevealed || category.WinnerNominationID == nil {
				continue
			}
			nominationID, ok := pickedNomination[participant.ID][category.ID]
			if ok && category.IsWinner(nominationID) {
				player.TotalScore += category.Points
				player.CorrectCount++
			}
		}
		players = append(players, player)
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalScore != players[j].TotalScore {
			return players[i].TotalScore > players[j].TotalScore
		}
		return players[i].UserID.String() < players[j].UserID.String()
	})

	for i := range players {
		if i > 0 && players[i].TotalScore == players[i-1].TotalScore {
			players[i].Rank = players[i-1].Rank
		} else {
			players[i].Rank = i + 1
		}
	}

	return players
}

// ForGame loads everything the calculator needs and flags the viewer's own
// row. A nil viewer id leaves IsCurrentUser unset on every row.
func (s *LeaderboardService) ForGame(ctx context.Context, gameID uuid.UUID, viewerID uuid.UUID) ([]awards.LeaderboardPlayer, error) {
	game, err := s.games.GetGame(ctx, gameID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, awards.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	participants, err := s.games.GetParticipantUsers(ctx, gameID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	picks, err := s.picks.GetPicksByGame(ctx, gameID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get picks: %w", err)
	}

	categories, err := s.categories.GetCategoriesByEvent(ctx, game.EventID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	players := CalculateLeaderboard(participants, picks, categories)
	if viewerID != uuid.Nil {
		for i := range players {
			if players[i].UserID == viewerID {
				players[i].IsCurrentUser = true
			}
		}
	}
	return players, nil
}
