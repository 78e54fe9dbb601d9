// Package testutil provides an in-memory store and fixtures for tests.
package testutil

import (
	"fmt"
	"io"
	"testing"

	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabase opens a private in-memory SQLite database with the full schema.
// The pool holds one connection, so transactions run one at a time.
func NewDatabase(t *testing.T) *database.Database {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := database.NewDatabase(db)
	require.NoError(t, store.Migrate())
	return store
}

// Logger returns a logger that discards output.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func CreateUser(t *testing.T, db *database.Database, username string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.SaveUser(user))
	return user
}

func CreateAdmin(t *testing.T, db *database.Database, username string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.SaveUser(user))
	return user
}

// CreateGame stores a game with an optional rank ladder, lowest rank first.
func CreateGame(t *testing.T, db *database.Database, title string, ranks ...string) *models.Game {
	t.Helper()

	game := &models.Game{Title: title}
	require.NoError(t, db.SaveGame(game))

	for i, name := range ranks {
		rank := models.GameRank{GameID: game.ID, Name: name, Position: i + 1}
		require.NoError(t, db.SaveGameRank(&rank))
		game.Ranks = append(game.Ranks, rank)
	}
	return game
}
