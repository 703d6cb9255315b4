package server

import (
	"net/http"
	"testing"

	"blogapi/internal/models"
	"blogapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentData struct {
	ID             uint   `json:"id"`
	Content        string `json:"content"`
	AuthorID       uint   `json:"author_id"`
	PostID         uint   `json:"post_id"`
	IsActive       bool   `json:"is_active"`
	AuthorUsername string `json:"author_username"`
}

func TestComments(t *testing.T) {
	e := newTestEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	post := testutil.CreatePost(t, e.db, alice, "Discussed")
	token := e.token(t, bob)

	for _, content := range []string{"first!", "second"} {
		status, env := e.do(t, http.MethodPost, postPath(post.ID, "/comments"), map[string]string{"content": content}, token)
		require.Equal(t, http.StatusCreated, status, env.Errors)
		assert.Equal(t, "Comment created successfully", env.Message)
		c := decode[commentData](t, env.Data)
		assert.Equal(t, "bob", c.AuthorUsername)
		assert.Equal(t, post.ID, c.PostID)
		assert.True(t, c.IsActive)
	}

	// Hidden comments are excluded from listings.
	require.NoError(t, e.db.Model(&models.Comment{}).Where("content = ?", "first!").Update("is_active", false).Error)

	status, env := e.do(t, http.MethodGet, postPath(post.ID, "/comments"), nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Comments retrieved successfully", env.Message)
	comments := decode[[]commentData](t, env.Data)
	require.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, int64(1), env.Pagination.Total)

	status, env = e.do(t, http.MethodGet, postPath(post.ID, ""), nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), decode[models.Post](t, env.Data).CommentCount)
}

func TestComments_Errors(t *testing.T) {
	e := newTestEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	post := testutil.CreatePost(t, e.db, alice, "Discussed")
	token := e.token(t, alice)

	status, env := e.do(t, http.MethodPost, postPath(9999, "/comments"), map[string]string{"content": "hello"}, token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found", env.Errors["post"])

	status, env = e.do(t, http.MethodPost, postPath(post.ID, "/comments"), map[string]string{"content": ""}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "content")

	status, env = e.do(t, http.MethodGet, postPath(post.ID, "/comments?page=0"), nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid query parameters", env.Message)

	status, env = e.do(t, http.MethodGet, postPath(9999, "/comments"), nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))
}
