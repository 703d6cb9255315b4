package server

import (
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body validation.CommentRequest true "Comment"
// @Success 201 {object} models.Response{data=models.Comment}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}
	var req validation.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	content, err := req.Validate()
	if err != nil {
		return respondError(c, "Validation failed", err)
	}

	user, _ := middleware.CurrentUser(c)
	comment, err := s.comments.Create(c.UserContext(), content, user.ID, postID)
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return respondError(c, "Failed to create comment", err)
		}
		return respondError(c, "", err)
	}

	return models.RespondOK(c, fiber.StatusCreated, "Comment created successfully", comment)
}

// ListComments handles GET /api/posts/:id/comments
// @Summary List comments
// @Description Active comments, newest first.
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Page size (1-100)" default(10)
// @Success 200 {object} models.Response{data=[]models.Comment}
// @Failure 400 {object} models.Response
// @Router /posts/{id}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}
	q, err := validation.ParsePageQuery(c.Query)
	if err != nil {
		return respondError(c, "Invalid query parameters", err)
	}

	page, err := s.comments.ListForPost(c.UserContext(), postID, q.Page, q.PerPage)
	if err != nil {
		return respondError(c, "", err)
	}
	return respondPage(c, "Comments retrieved successfully", page.Comments, q.Page, q.PerPage, page.Total)
}
