package service

import (
	"context"
	"encoding/json"
	"testing"

	"blogapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Discuss")

	comment, err := f.comments.Create(ctx, "  First!  ", alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "First!", comment.Content)
	assert.True(t, comment.IsActive)

	raw, err := json.Marshal(comment)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "alice", body["author_username"])

	got, err := f.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.CommentCount)
}

func TestCommentService_CreateOnMissingPost(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.comments.Create(context.Background(), "hello", alice.ID, 31337)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "Post not found", appErr.Message)
}

func TestCommentService_ListForPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Busy")

	for _, c := range []string{"one", "two", "three"} {
		_, err := f.comments.Create(ctx, c, alice.ID, post.ID)
		require.NoError(t, err)
	}

	page, err := f.comments.ListForPost(ctx, post.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, "three", page.Comments[0].Content)

	empty, err := f.comments.ListForPost(ctx, 4040, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Comments)
}
