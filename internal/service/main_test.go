package service

import (
	"testing"

	"blogapi/internal/database"
	"blogapi/internal/models"
	"blogapi/internal/repository"
	"blogapi/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	store    repository.Store
	votes    *VoteService
	posts    *PostService
	users    *UserService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := repository.NewStore(db, database.TxOptions(db))
	return &fixture{
		db:       db,
		store:    store,
		votes:    NewVoteService(store),
		posts:    NewPostService(store),
		users:    NewUserService(store).WithBcryptCost(4),
		comments: NewCommentService(store),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name)
}

func (f *fixture) post(t *testing.T, author *models.User, title string) *models.Post {
	return testutil.CreatePost(t, f.db, author, title)
}
