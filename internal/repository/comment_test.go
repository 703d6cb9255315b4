package repository

import (
	"context"
	"testing"
	"time"

	"blogapi/internal/models"
	"blogapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateLoadsAuthor(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Hello")

	c := &models.Comment{Content: "Nice", AuthorID: alice.ID, PostID: post.ID, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), c))
	require.NotNil(t, c.Author)
	assert.Equal(t, "alice", c.Author.Username)
}

func TestCommentRepository_ListActiveByPost(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Hello")
	other := testutil.CreatePost(t, db, alice, "Other")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		require.NoError(t, db.Create(&models.Comment{Content: content, AuthorID: alice.ID, PostID: post.ID, IsActive: true, CreatedAt: base.Add(time.Duration(i) * time.Minute)}).Error)
	}
	inactive := &models.Comment{Content: "gone", AuthorID: alice.ID, PostID: post.ID, IsActive: true}
	require.NoError(t, db.Create(inactive).Error)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "elsewhere", AuthorID: alice.ID, PostID: other.ID, IsActive: true}).Error)

	comments, total, err := repo.ListActiveByPost(context.Background(), post.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, comments, 2)
	assert.Equal(t, "third", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "alice", comments[0].Author.Username)

	comments, total, err = repo.ListActiveByPost(context.Background(), 9999, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, comments)
}
