package service

import (
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/store"
	users "github.com/pickemparty/pickem-app/internal/user"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// One shared connection so every query sees the same in-memory DB
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

type fixture struct {
	db         *sqlx.DB
	games      *store.GameStore
	categories *store.CategoryStore
	picks      *store.PickStore
	users      *store.UserStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })
	return &fixture{
		db:         db,
		games:      store.NewGameStore(db),
		categories: store.NewCategoryStore(db),
		picks:      store.NewPickStore(db),
		users:      store.NewUserStore(db),
	}
}

func (f *fixture) user(t *testing.T, username string) *users.User {
	t.Helper()
	user := &users.User{ID: uuid.New(), Email: username + "@example.com", Username: username}
	require.NoError(t, f.users.CreateUser(context.Background(), user))
	return user
}

func (f *fixture) event(t *testing.T, name string) *awards.Event {
	t.Helper()
	event := &awards.Event{ID: uuid.New(), Name: name}
	require.NoError(t, f.games.CreateEvent(context.Background(), event))
	return event
}

func (f *fixture) game(t *testing.T, eventID uuid.UUID, code string, status awards.GameStatus) *awards.Game {
	t.Helper()
	game := &awards.Game{ID: uuid.New(), EventID: eventID, Name: "Party", Status: status, AccessCode: code}
	tx, err := f.db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, f.games.CreateGame(context.Background(), tx, game))
	require.NoError(t, tx.Commit())
	return game
}

func (f *fixture) category(t *testing.T, eventID uuid.UUID, name string, points int) *awards.Category {
	t.Helper()
	category := &awards.Category{ID: uuid.New(), EventID: eventID, Name: name, Points: points}
	require.NoError(t, f.categories.CreateCategory(context.Background(), category))
	return category
}

func (f *fixture) nomination(t *testing.T, categoryID uuid.UUID, label string) *awards.Nomination {
	t.Helper()
	nomination := &awards.Nomination{ID: uuid.New(), CategoryID: categoryID, Label: label}
	require.NoError(t, f.categories.CreateNomination(context.Background(), nomination))
	return nomination
}

func (f *fixture) join(t *testing.T, gameID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.games.CreateParticipant(context.Background(), &awards.GameParticipant{GameID: gameID, UserID: userID}))
}

func (f *fixture) pickService() *PickService {
	return NewPickService(f.db, f.games, f.categories, f.picks)
}

func (f *fixture) gameService() *GameService {
	return NewGameService(f.db, f.games, f.categories, f.picks)
}

func (f *fixture) leaderboardService() *LeaderboardService {
	return NewLeaderboardService(f.db, f.games, f.categories, f.picks)
}
