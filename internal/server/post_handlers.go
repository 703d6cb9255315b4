package server

import (
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/service"
	"blogapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validation.CreatePostRequest true "Post"
// @Success 201 {object} models.Response{data=models.Post}
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req validation.CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in, err := req.Validate()
	if err != nil {
		return respondError(c, "Validation failed", err)
	}

	user, _ := middleware.CurrentUser(c)
	post, err := s.posts.Create(c.UserContext(), service.CreatePostInput{
		Title:    in.Title,
		Body:     in.Body,
		Author:   in.Author,
		AuthorID: &user.ID,
	})
	if err != nil {
		return respondError(c, "Failed to create post", err)
	}

	return models.RespondOK(c, fiber.StatusCreated, "Post created successfully", post)
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Page size (1-100)" default(10)
// @Param sort_by query string false "published_at, title or vote_score" default(published_at)
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {object} models.Response{data=[]models.Post}
// @Failure 400 {object} models.Response
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	q, err := validation.ParseListQuery(c.Query)
	if err != nil {
		return respondError(c, "Invalid query parameters", err)
	}

	page, err := s.posts.List(c.UserContext(), service.ListPostsInput{
		Page:    q.Page,
		PerPage: q.PerPage,
		SortBy:  q.SortBy,
		Order:   q.Order,
	})
	if err != nil {
		return respondError(c, "", err)
	}

	return respondPage(c, "Posts retrieved successfully", page.Posts, q.Page, q.PerPage, page.Total)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=models.Post}
// @Failure 404 {object} models.Response
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "", err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Post retrieved successfully", post)
}

// UpdatePost handles PUT /api/posts/:id. Only the author may update.
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body validation.UpdatePostRequest true "Fields to change"
// @Success 200 {object} models.Response{data=models.Post}
// @Failure 400 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}
	var req validation.UpdatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in, err := req.Validate()
	if err != nil {
		return respondError(c, "Validation failed", err)
	}

	ctx := c.UserContext()
	existing, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return respondError(c, "", err)
	}

	user, _ := middleware.CurrentUser(c)
	if !existing.IsAuthoredBy(user.ID) {
		return respondError(c, "Unauthorized to update this post",
			models.NewForbiddenError("Not post author"))
	}

	post, err := s.posts.Update(ctx, service.UpdatePostInput{
		PostID:   id,
		Title:    in.Title,
		Body:     in.Body,
		AuthorID: &user.ID,
	})
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return respondError(c, "Failed to update post", err)
		}
		return respondError(c, "", err)
	}

	return models.RespondOK(c, fiber.StatusOK, "Post updated successfully", post)
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete.
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}

	user, _ := middleware.CurrentUser(c)
	if err := s.posts.Delete(c.UserContext(), id, &user.ID); err != nil {
		return respondError(c, "", err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Post deleted successfully", nil)
}

// SearchPosts handles GET /api/search?q=...
// @Summary Search posts
// @Description Case-insensitive substring match on title or body, newest first. An empty query lists all posts.
// @Tags posts
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Page size (1-100)" default(10)
// @Success 200 {object} models.Response{data=[]models.Post}
// @Failure 400 {object} models.Response
// @Router /search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	q, err := validation.ParseListQuery(c.Query)
	if err != nil {
		return respondError(c, "Invalid query parameters", err)
	}

	page, err := s.posts.Search(c.UserContext(), q.Query, q.Page, q.PerPage)
	if err != nil {
		return respondError(c, "", err)
	}

	posts := page.Posts
	if posts == nil {
		posts = []*models.Post{}
	}
	pagination := models.NewPagination(q.Page, q.PerPage, page.Total)
	return c.Status(fiber.StatusOK).JSON(models.Response{
		Success:     true,
		Message:     `Search completed for: "` + q.Query + `"`,
		Data:        posts,
		Pagination:  &pagination,
		SearchQuery: &q.Query,
	})
}
