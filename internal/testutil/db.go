// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"blogapi/internal/database"
	"blogapi/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewSQLiteDB opens an isolated in-memory SQLite database with foreign keys
// enabled and the blog schema migrated. It is closed when the test ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:blogtest%d?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts an active user whose password is "password123".
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// CreatePost inserts a published post owned by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       title,
		Body:        "Body of " + title + " with enough text.",
		Author:      author.Username,
		AuthorID:    &author.ID,
		IsPublished: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
