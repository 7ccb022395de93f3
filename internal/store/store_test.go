package store

import (
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pickemparty/pickem-app/internal/awards"
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

func createTestUser(t *testing.T, db *sqlx.DB, username string) *users.User {
	t.Helper()
	user := &users.User{ID: uuid.New(), Email: username + "@example.com", Username: username}
	require.NoError(t, NewUserStore(db).CreateUser(context.Background(), user))
	return user
}

func createTestEvent(t *testing.T, db *sqlx.DB, name string) *awards.Event {
	t.Helper()
	event := &awards.Event{ID: uuid.New(), Name: name}
	require.NoError(t, NewGameStore(db).CreateEvent(context.Background(), event))
	return event
}

func createTestGame(t *testing.T, db *sqlx.DB, eventID uuid.UUID, code string, status awards.GameStatus) *awards.Game {
	t.Helper()
	game := &awards.Game{
		ID:         uuid.New(),
		EventID:    eventID,
		Name:       "Test Game",
		Status:     status,
		AccessCode: code,
	}
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, NewGameStore(db).CreateGame(context.Background(), tx, game))
	require.NoError(t, tx.Commit())
	return game
}

func createTestCategory(t *testing.T, db *sqlx.DB, eventID uuid.UUID, name string, points int) *awards.Category {
	t.Helper()
	category := &awards.Category{ID: uuid.New(), EventID: eventID, Name: name, Points: points}
	require.NoError(t, NewCategoryStore(db).CreateCategory(context.Background(), category))
	return category
}

func createTestNomination(t *testing.T, db *sqlx.DB, categoryID uuid.UUID, label string) *awards.Nomination {
	t.Helper()
	nomination := &awards.Nomination{ID: uuid.New(), CategoryID: categoryID, Label: label}
	require.NoError(t, NewCategoryStore(db).CreateNomination(context.Background(), nomination))
	return nomination
}
