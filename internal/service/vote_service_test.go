package service

import (
	"context"
	"sync"
	"testing"

	"blogapi/internal/models"
	"blogapi/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteService_StateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Votable")

	steps := []struct {
		name       string
		upvote     bool
		wantAction models.VoteAction
		wantUp     int64
		wantDown   int64
		wantScore  int64
	}{
		{"first upvote adds", true, models.VoteAdded, 1, 0, 1},
		{"repeat upvote removes", true, models.VoteRemoved, 0, 0, 0},
		{"downvote adds", false, models.VoteAdded, 0, 1, -1},
		{"upvote flips", true, models.VoteUpdated, 1, 0, 1},
		{"downvote flips", false, models.VoteUpdated, 0, 1, -1},
		{"repeat downvote removes", false, models.VoteRemoved, 0, 0, 0},
	}

	for _, step := range steps {
		got, action, err := f.votes.Vote(ctx, alice.ID, post.ID, step.upvote)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.wantAction, action, step.name)
		assert.Equal(t, step.wantUp, got.Upvotes, step.name)
		assert.Equal(t, step.wantDown, got.Downvotes, step.name)
		assert.Equal(t, step.wantScore, got.VoteScore, step.name)
	}
}

func TestVoteService_UpThenDownMovesScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Score")

	got, err := f.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.VoteScore)

	got, _, err = f.votes.Vote(ctx, alice.ID, post.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.VoteScore)

	got, _, err = f.votes.Vote(ctx, alice.ID, post.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, -1, got.VoteScore)
}

func TestVoteService_MissingPost(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, _, err := f.votes.Vote(context.Background(), alice.ID, 404, true)
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "Post not found", appErr.Message)
}

func TestVoteService_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Status")

	vote, err := f.votes.Status(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Nil(t, vote)

	_, _, err = f.votes.Vote(ctx, alice.ID, post.ID, false)
	require.NoError(t, err)

	vote, err = f.votes.Status(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, models.VoteTypeDownvote, vote.Kind())
}

func TestVoteService_ConcurrentSameUserKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Contended")

	const workers = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		added   int
		removed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, action, err := f.votes.Vote(ctx, alice.ID, post.ID, true)
			if err != nil {
				assert.True(t, models.HasCode(err, models.CodeConflict), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch action {
			case models.VoteAdded:
				added++
			case models.VoteRemoved:
				removed++
			}
		}()
	}
	wg.Wait()

	var n int64
	require.NoError(t, f.db.Model(&models.Vote{}).Where("post_id = ?", post.ID).Count(&n).Error)
	assert.LessOrEqual(t, n, int64(1))
	assert.EqualValues(t, n, added-removed)
}

func TestVoteService_ConcurrentDistinctUsersAllCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "Popular")

	voters := make([]*models.User, 8)
	for i := range voters {
		voters[i] = f.user(t, "voter"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for i, v := range voters {
		wg.Add(1)
		go func(id uint, up bool) {
			defer wg.Done()
			_, _, err := f.votes.Vote(ctx, id, post.ID, up)
			assert.NoError(t, err)
		}(v.ID, i%2 == 0)
	}
	wg.Wait()

	got, err := f.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.Upvotes)
	assert.EqualValues(t, 4, got.Downvotes)
	assert.EqualValues(t, 0, got.VoteScore)
}

// conflictStore fails vote inserts with a unique violation, as a concurrent
// insert of the same (user, post) pair would on postgres.
type conflictStore struct {
	repository.Store
	votes conflictVotes
}

type conflictVotes struct {
	repository.VoteRepository
}

func (conflictVotes) Create(context.Context, *models.Vote) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "unique_user_post_vote"}
}

func (s *conflictStore) Votes() repository.VoteRepository { return s.votes }

func (s *conflictStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(&conflictStore{Store: tx, votes: conflictVotes{VoteRepository: tx.Votes()}})
	})
}

func TestVoteService_UniqueViolationIsConflict(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	post := f.post(t, alice, "Raced")

	svc := NewVoteService(&conflictStore{Store: f.store, votes: conflictVotes{VoteRepository: f.store.Votes()}})
	_, _, err := svc.Vote(context.Background(), alice.ID, post.ID, true)
	require.Error(t, err)

	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.Equal(t, "Voting conflict occurred, please try again", appErr.Message)
	assert.Equal(t, 400, appErr.Status())
}
