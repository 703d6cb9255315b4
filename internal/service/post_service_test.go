package service

import (
	"context"
	"testing"

	"blogapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateTrimsAndReturnsStats(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	post, err := f.posts.Create(context.Background(), CreatePostInput{
		Title:    "  Hello  ",
		Body:     "\tA body that is long enough\n",
		Author:   " Alice ",
		AuthorID: &alice.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "A body that is long enough", post.Body)
	assert.Equal(t, "Alice", post.Author)
	assert.True(t, post.IsPublished)
	assert.False(t, post.PublishedAt.IsZero())
	assert.Zero(t, post.VoteScore)
}

func TestPostService_CreateWithUnknownAuthorIsConflict(t *testing.T) {
	f := newFixture(t)
	ghost := uint(777)

	_, err := f.posts.Create(context.Background(), CreatePostInput{Title: "t", Body: "0123456789", Author: "x", AuthorID: &ghost})
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.Equal(t, "Error creating post due to constraint violation", appErr.Message)
}

func TestPostService_GetByIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.posts.GetByID(context.Background(), 1)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "Post not found", appErr.Message)
}

func TestPostService_SearchEmptyEqualsList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	for _, title := range []string{"Test Title 1", "Test Title 2", "Test Title 3"} {
		f.post(t, alice, title)
	}

	listed, err := f.posts.List(ctx, ListPostsInput{Page: 1, PerPage: 10, SortBy: models.SortByPublishedAt, Order: models.OrderDesc})
	require.NoError(t, err)
	searched, err := f.posts.Search(ctx, "", 1, 10)
	require.NoError(t, err)

	assert.Equal(t, listed.Total, searched.Total)
	assert.Equal(t, postIDs(listed.Posts), postIDs(searched.Posts))

	found, err := f.posts.Search(ctx, "Title 2", 1, 10)
	require.NoError(t, err)
	require.Len(t, found.Posts, 1)
	assert.Equal(t, "Test Title 2", found.Posts[0].Title)
	assert.EqualValues(t, 1, found.Total)
}

func TestPostService_ListPaginates(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	for i := 0; i < 5; i++ {
		f.post(t, alice, "Post")
	}

	page, err := f.posts.List(context.Background(), ListPostsInput{Page: 3, PerPage: 2, SortBy: models.SortByTitle, Order: models.OrderAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Len(t, page.Posts, 1)
}

func TestPostService_UpdateSkipsEmptyFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Original")

	updated, err := f.posts.Update(ctx, UpdatePostInput{PostID: post.ID, Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, post.Body, updated.Body)

	updated, err = f.posts.Update(ctx, UpdatePostInput{PostID: post.ID, Title: "   ", Body: "A brand new body text"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "A brand new body text", updated.Body)

	_, err = f.posts.Update(ctx, UpdatePostInput{PostID: 999, Title: "x"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_DeleteChecksAuthorAndCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.post(t, alice, "Mine")

	_, _, err := f.votes.Vote(ctx, bob.ID, post.ID, true)
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, "Nice post", bob.ID, post.ID)
	require.NoError(t, err)

	err = f.posts.Delete(ctx, post.ID, &bob.ID)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	assert.Equal(t, "Unauthorized to delete this post", appErr.Message)

	require.NoError(t, f.posts.Delete(ctx, post.ID, &alice.ID))

	var votes, comments int64
	f.db.Model(&models.Vote{}).Count(&votes)
	f.db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, votes)
	assert.Zero(t, comments)

	assert.True(t, models.HasCode(f.posts.Delete(ctx, post.ID, nil), models.CodeNotFound))
}

func TestDeletingUserRemovesTheirContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	alicePost := f.post(t, alice, "Alice's")
	bobPost := f.post(t, bob, "Bob's")

	_, _, err := f.votes.Vote(ctx, alice.ID, bobPost.ID, true)
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, "from alice", alice.ID, bobPost.ID)
	require.NoError(t, err)
	_, _, err = f.votes.Vote(ctx, bob.ID, alicePost.ID, true)
	require.NoError(t, err)

	require.NoError(t, f.store.Users().Delete(ctx, alice.ID))

	var posts, votes, comments int64
	f.db.Model(&models.Post{}).Count(&posts)
	f.db.Model(&models.Vote{}).Count(&votes)
	f.db.Model(&models.Comment{}).Count(&comments)
	assert.EqualValues(t, 1, posts, "only bob's post remains")
	assert.Zero(t, votes)
	assert.Zero(t, comments)

	got, err := f.posts.GetByID(ctx, bobPost.ID)
	require.NoError(t, err)
	assert.Zero(t, got.VoteScore)
}

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
