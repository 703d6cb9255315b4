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

type PostService struct {
	store repository.Store
}

type CreatePostInput struct {
	Title    string
	Body     string
	Author   string
	AuthorID *uint
}

// ListPostsInput selects a page of published posts.
type ListPostsInput struct {
	Page    int
	PerPage int
	SortBy  string
	Order   string
}

// UpdatePostInput carries a partial update. Empty strings and a nil
// AuthorID leave the stored value unchanged.
type UpdatePostInput struct {
	PostID   uint
	Title    string
	Body     string
	AuthorID *uint
}

// PostPage is one page of posts and the total across all pages.
type PostPage struct {
	Posts []*models.Post
	Total int64
}

func NewPostService(store repository.Store) *PostService {
	return &PostService{store: store}
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	post = &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Body:        strings.TrimSpace(in.Body),
		Author:      strings.TrimSpace(in.Author),
		AuthorID:    in.AuthorID,
		IsPublished: true,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		created, err := tx.Posts().GetByID(ctx, post.ID)
		if err != nil {
			return err
		}
		post = created
		return nil
	})
	if err != nil {
		if repository.IsConstraintViolation(err) {
			return nil, models.NewConflictError("Error creating post due to constraint violation", err).WithField("creation")
		}
		return nil, internal(ctx, "create post", err)
	}

	middleware.Logger.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)))
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, internal(ctx, "get post", err)
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	return s.list(ctx, repository.PostQuery{SortBy: in.SortBy, Order: in.Order}, in.Page, in.PerPage)
}

// Search matches query against title and body, newest first. A blank query
// is a plain listing with the default sort.
func (s *PostService) Search(ctx context.Context, query string, page, perPage int) (result *PostPage, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Search",
		attribute.String("search.query", query),
	)
	defer func() { observability.EndSpan(span, err) }()

	q := repository.PostQuery{
		Search: strings.TrimSpace(query),
		SortBy: models.SortByPublishedAt,
		Order:  models.OrderDesc,
	}
	return s.list(ctx, q, page, perPage)
}

func (s *PostService) list(ctx context.Context, q repository.PostQuery, page, perPage int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	q.Limit = perPage
	q.Offset = (page - 1) * perPage

	posts, total, err := s.store.Posts().List(ctx, q)
	if err != nil {
		return nil, internal(ctx, "list posts", err)
	}
	return &PostPage{Posts: posts, Total: total}, nil
}

// Update applies the non-empty fields in one transaction. Authorship is
// checked by the caller.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Update",
		attribute.Int64("post.id", int64(in.PostID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Posts().LockByID(ctx, in.PostID)
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if title := strings.TrimSpace(in.Title); title != "" {
			changes["title"] = title
		}
		if body := strings.TrimSpace(in.Body); body != "" {
			changes["body"] = body
		}
		if in.AuthorID != nil {
			changes["author_id"] = *in.AuthorID
		}
		if err := tx.Posts().Update(ctx, existing, changes); err != nil {
			return err
		}

		post, err = tx.Posts().GetByID(ctx, in.PostID)
		return err
	})
	if err != nil {
		if repository.IsConstraintViolation(err) {
			return nil, models.NewConflictError("Error updating post due to constraint violation", err).WithField("update")
		}
		return nil, internal(ctx, "update post", err)
	}

	middleware.Logger.InfoContext(ctx, "post updated", slog.Uint64("post_id", uint64(in.PostID)))
	return post, nil
}

// Delete removes the post with its votes and comments. When
// requestingAuthorID is set it must match the post's author.
func (s *PostService) Delete(ctx context.Context, id uint, requestingAuthorID *uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Delete",
		attribute.Int64("post.id", int64(id)),
	)
	defer func() { observability.EndSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if requestingAuthorID != nil && !post.IsAuthoredBy(*requestingAuthorID) {
			return models.NewForbiddenError("Unauthorized to delete this post")
		}
		return tx.Posts().Delete(ctx, id)
	})
	if err != nil {
		return internal(ctx, "delete post", err)
	}

	middleware.Logger.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(id)))
	return nil
}
