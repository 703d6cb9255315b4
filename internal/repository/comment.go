package repository

import (
	"context"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListActiveByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and loads its author for author_username.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(comment).Error; err != nil {
		return err
	}
	var author models.User
	if err := db.First(&author, comment.AuthorID).Error; err != nil {
		return err
	}
	comment.Author = &author
	return nil
}

// ListActiveByPost returns active comments newest first. Ties on created_at
// fall back to id so pages are stable.
func (r *commentRepository) ListActiveByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_active = ?", postID, true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	comments := make([]*models.Comment, 0, limit)
	err := base.Session(&gorm.Session{}).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}
