package repository

import (
	"context"
	"errors"
	"strings"

	"blogapi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostQuery selects a page of published posts.
type PostQuery struct {
	// Search, when non-empty, matches title or body case-insensitively and
	// forces newest-first ordering.
	Search string
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// PostRepository defines persistence operations for posts. Reads return the
// derived vote and comment counters.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	LockByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post, changes map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postStatsSelect computes the derived counters as columns on the post row.
// vote_score is summed rather than taken as a difference so the alias can be
// ordered on directly.
const postStatsSelect = "posts.*, " +
	"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.vote_type = ?) AS upvotes, " +
	"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.vote_type = ?) AS downvotes, " +
	"(SELECT COALESCE(SUM(CASE WHEN votes.vote_type = ? THEN 1 ELSE -1 END), 0) FROM votes WHERE votes.post_id = posts.id) AS vote_score, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

func withStats(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).Select(postStatsSelect, true, false, true)
}

var sortColumns = map[string]string{
	models.SortByPublishedAt: "posts.published_at",
	models.SortByTitle:       "posts.title",
	models.SortByVoteScore:   "vote_score",
}

func applySort(db *gorm.DB, sortBy, order string) *gorm.DB {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = sortColumns[models.SortByPublishedAt]
	}
	desc := order != models.OrderAsc
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "posts.id", Raw: true}, Desc: desc})
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withStats(r.db.WithContext(ctx)).Where("posts.id = ?", id).Take(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// LockByID loads the bare post row with SELECT ... FOR UPDATE. SQLite has no
// row locks and serializes writers on its single connection instead.
func (r *postRepository) LockByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		Take(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) published(ctx context.Context, search string) *gorm.DB {
	db := r.db.WithContext(ctx).Where("posts.is_published = ?", true)
	if search == "" {
		return db
	}
	// SQLite's LOWER only folds ASCII, so non-ASCII search there stays
	// case-sensitive. Postgres folds Unicode through ILIKE.
	if r.db.Dialector.Name() == "postgres" {
		like := "%" + escapeLike(search) + "%"
		return db.Where(`(posts.title ILIKE ? ESCAPE '\' OR posts.body ILIKE ? ESCAPE '\')`, like, like)
	}
	like := "%" + escapeLike(strings.ToLower(search)) + "%"
	return db.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.body) LIKE ? ESCAPE '\')`, like, like)
}

func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, int64, error) {
	var total int64
	if err := r.published(ctx, q.Search).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	sortBy, order := q.SortBy, q.Order
	if q.Search != "" {
		sortBy, order = models.SortByPublishedAt, models.OrderDesc
	}

	posts := make([]*models.Post, 0, q.Limit)
	err := applySort(withStats(r.published(ctx, q.Search)), sortBy, order).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// Update writes only the given columns; updated_at is refreshed by GORM.
func (r *postRepository) Update(ctx context.Context, post *models.Post, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(post).Updates(changes).Error
}

// Delete removes the post with its votes and comments. The children are
// deleted explicitly as well as by ON DELETE CASCADE, so the outcome does not
// depend on the connection enforcing foreign keys.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}
