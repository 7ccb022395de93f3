package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetGame(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewGameStore(db)

	event := createTestEvent(t, db, "Oscars")
	game := createTestGame(t, db, event.ID, "OSCARS", awards.GameSetup)

	fetched, err := store.GetGame(context.Background(), game.ID.String())
	require.NoError(t, err)
	assert.Equal(t, game.ID, fetched.ID)
	assert.Equal(t, event.ID, fetched.EventID)
	assert.Equal(t, awards.GameSetup, fetched.Status)
	assert.Equal(t, "OSCARS", fetched.AccessCode)
	assert.Nil(t, fetched.PicksLockAt)

	byCode, err := store.GetGameByAccessCode(context.Background(), "OSCARS")
	require.NoError(t, err)
	assert.Equal(t, game.ID, byCode.ID)

	_, err = store.GetGameByAccessCode(context.Background(), "NOSUCH")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAccessCodeUnique(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewGameStore(db)

	event := createTestEvent(t, db, "Oscars")
	createTestGame(t, db, event.ID, "SAMECODE", awards.GameSetup)

	dup := &awards.Game{ID: uuid.New(), EventID: event.ID, Name: "Dup", Status: awards.GameSetup, AccessCode: "SAMECODE"}
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = store.CreateGame(context.Background(), tx, dup)
	assert.Error(t, err)
	tx.Rollback()
}

func TestParticipantJoinIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewGameStore(db)

	user := createTestUser(t, db, "ada")
	event := createTestEvent(t, db, "Oscars")
	game := createTestGame(t, db, event.ID, "PARTY3", awards.GameOpen)

	participant := &awards.GameParticipant{GameID: game.ID, UserID: user.ID}
	require.NoError(t, store.CreateParticipant(context.Background(), participant))
	require.NoError(t, store.CreateParticipant(context.Background(), participant))

	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM game_participants WHERE game_id = ?", game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fetched, err := store.GetParticipant(context.Background(), game.ID.String(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.UserID)
	assert.False(t, fetched.JoinedAt.IsZero())
}

func TestGetParticipantUsers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewGameStore(db)

	ada := createTestUser(t, db, "ada")
	grace := createTestUser(t, db, "grace")
	event := createTestEvent(t, db, "Oscars")
	game := createTestGame(t, db, event.ID, "PARTY4", awards.GameOpen)
	other := createTestGame(t, db, event.ID, "PARTY5", awards.GameOpen)

	require.NoError(t, store.CreateParticipant(context.Background(), &awards.GameParticipant{GameID: game.ID, UserID: ada.ID}))
	require.NoError(t, store.CreateParticipant(context.Background(), &awards.GameParticipant{GameID: game.ID, UserID: grace.ID}))
	require.NoError(t, store.CreateParticipant(context.Background(), &awards.GameParticipant{GameID: other.ID, UserID: ada.ID}))

	participants, err := store.GetParticipantUsers(context.Background(), game.ID.String())
	require.NoError(t, err)
	require.Len(t, participants, 2)

	games, err := store.GetGamesForUser(context.Background(), ada.ID.String())
	require.NoError(t, err)
	assert.Len(t, games, 2)

	games, err = store.GetGamesForUser(context.Background(), grace.ID.String())
	require.NoError(t, err)
	assert.Len(t, games, 1)
}
