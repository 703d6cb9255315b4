// Package seed provides helpers to create demo data for the blog database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"blogapi/internal/middleware"
	"blogapi/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// Options tune the factory.
type Options struct {
	// DryRun builds entities with synthetic IDs and writes nothing.
	DryRun bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// RandSeed makes output reproducible when non-zero.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	fake *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// hash of DefaultPassword, computed once
	defaultHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		fake:   gofakeit.New(seed),
		nextID: 1000,
	}
}

func (f *Factory) hash(password string) (string, error) {
	if password == DefaultPassword && f.defaultHash != "" {
		return f.defaultHash, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), f.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if password == DefaultPassword {
		f.defaultHash = string(h)
	}
	return string(h), nil
}

func (f *Factory) persist(value any, id *uint, what string) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		middleware.Logger.Debug("[dry-run] "+what, slog.Uint64("id", uint64(*id)))
		return nil
	}
	return f.db.Create(value).Error
}

// deactivate clears is_active after insert unless want is set. gorm omits a
// false bool whose column has a default, so want is captured before insert.
func (f *Factory) deactivate(model any, field *bool, want bool) error {
	if want {
		return nil
	}
	*field = false
	if f.opts.DryRun {
		return nil
	}
	return f.db.Model(model).Update("is_active", false).Error
}

// CreateUser persists an active user with a unique username and the default
// password. Overrides run before hashing, so they may set PasswordHash to a
// plain password to be hashed.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	base := strings.ToLower(f.fake.Username())
	base = strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base)
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 60 {
		base = base[:60]
	}

	user := &models.User{
		Username:     fmt.Sprintf("%s_%d", base, f.fake.Number(1000, 999999)),
		Email:        f.fake.Email(),
		PasswordHash: DefaultPassword,
		IsActive:     true,
	}
	for _, override := range overrides {
		override(user)
	}

	hash, err := f.hash(user.PasswordHash)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	active := user.IsActive
	if err := f.persist(user, &user.ID, "create user"); err != nil {
		return nil, err
	}
	if err := f.deactivate(user, &user.IsActive, active); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by user published within the last
// maxDays days.
func (f *Factory) BuildPost(user *models.User, maxDays int, overrides ...func(*models.Post)) *models.Post {
	if maxDays <= 0 {
		maxDays = 90
	}
	published := time.Now().UTC().
		Add(-time.Duration(f.rng.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(f.rng.Intn(24*60)) * time.Minute)

	title := strings.TrimSuffix(f.fake.Sentence(f.rng.Intn(6)+3), ".")
	if len(title) > 200 {
		title = title[:200]
	}
	post := &models.Post{
		Title:       title,
		Body:        f.fake.Paragraph(f.rng.Intn(3)+1, 4, 12, "\n\n"),
		Author:      user.Username,
		AuthorID:    &user.ID,
		PublishedAt: published,
		UpdatedAt:   published,
		IsPublished: true,
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a generated post.
func (f *Factory) CreatePost(user *models.User, maxDays int, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, maxDays, overrides...)
	if err := f.persist(post, &post.ID, "create post"); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post, dated after the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	created := post.PublishedAt.Add(time.Duration(f.rng.Intn(72*60)+1) * time.Minute)
	if now := time.Now().UTC(); created.After(now) {
		created = now
	}
	comment := &models.Comment{
		Content:   f.fake.Sentence(f.rng.Intn(15) + 3),
		AuthorID:  user.ID,
		PostID:    post.ID,
		CreatedAt: created,
		UpdatedAt: created,
		IsActive:  true,
	}
	for _, override := range overrides {
		override(comment)
	}

	active := comment.IsActive
	if err := f.persist(comment, &comment.ID, "create comment"); err != nil {
		return nil, err
	}
	if err := f.deactivate(comment, &comment.IsActive, active); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateVote persists a vote by user on post.
func (f *Factory) CreateVote(user *models.User, post *models.Post, upvote bool) (*models.Vote, error) {
	vote := &models.Vote{UserID: user.ID, PostID: post.ID, VoteType: upvote}
	if err := f.persist(vote, &vote.ID, "create vote"); err != nil {
		return nil, err
	}
	return vote, nil
}

// chance reports true with probability p.
func (f *Factory) chance(p float64) bool {
	return f.rng.Float64() < p
}

// between returns a value in [lo, hi].
func (f *Factory) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + f.rng.Intn(hi-lo+1)
}
