package service

import (
	"context"
	"log/slog"
	"strings"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/observability"
	"blogapi/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	store repository.Store
}

// CommentPage is one page of comments and the total across all pages.
type CommentPage struct {
	Comments []*models.Comment
	Total    int64
}

func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store}
}

// Create adds a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, content string, authorID, postID uint) (comment *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "Create",
		attribute.Int64("post.id", int64(postID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	comment = &models.Comment{
		Content:  strings.TrimSpace(content),
		AuthorID: authorID,
		PostID:   postID,
		IsActive: true,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Posts().LockByID(ctx, postID); err != nil {
			return err
		}
		return tx.Comments().Create(ctx, comment)
	})
	if err != nil {
		if repository.IsConstraintViolation(err) {
			return nil, models.NewConflictError("Error creating comment due to constraint violation", err).WithField("creation")
		}
		return nil, internal(ctx, "create comment", err)
	}

	middleware.Logger.InfoContext(ctx, "comment created",
		slog.Uint64("post_id", uint64(postID)),
		slog.Uint64("comment_id", uint64(comment.ID)),
	)
	return comment, nil
}

// ListForPost returns active comments, newest first. A post that does not
// exist simply has no comments.
func (s *CommentService) ListForPost(ctx context.Context, postID uint, page, perPage int) (*CommentPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	comments, total, err := s.store.Comments().ListActiveByPost(ctx, postID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, internal(ctx, "list comments", err)
	}
	return &CommentPage{Comments: comments, Total: total}, nil
}
