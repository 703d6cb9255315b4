package server

import (
	"time"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/observability"
	"blogapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// authPayload is returned by register and login.
type authPayload struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Register handles user registration
// @Summary Register
// @Description Create a user account and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.RegisterRequest true "Registration request"
// @Success 201 {object} models.Response{data=authPayload}
// @Failure 400 {object} models.Response
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req validation.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in, err := req.Validate()
	if err != nil {
		return respondError(c, "Validation failed", err)
	}

	user, err := s.users.Create(c.UserContext(), in.Username, in.Email, in.Password)
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return respondError(c, "Registration failed", err)
		}
		return respondError(c, "", err)
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return respondError(c, "", err)
	}

	return models.RespondOK(c, fiber.StatusCreated, "User registered successfully",
		authPayload{AccessToken: token, User: user})
}

// Login handles user authentication
// @Summary Login
// @Description Exchange credentials for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.LoginRequest true "Login credentials"
// @Success 200 {object} models.Response{data=authPayload}
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req validation.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	username, password, err := req.Validate()
	if err != nil {
		return respondError(c, "Validation failed", err)
	}

	user, err := s.users.Authenticate(c.UserContext(), username, password)
	if err != nil {
		if models.HasCode(err, models.CodeUnauthorized) {
			return respondError(c, "Login failed", err)
		}
		return respondError(c, "", err)
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return respondError(c, "", err)
	}

	return models.RespondOK(c, fiber.StatusOK, "Login successful",
		authPayload{AccessToken: token, User: user})
}

// Logout revokes the caller's token until it expires
// @Summary Logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	if id.Claims != nil && id.Claims.ExpiresAt != nil {
		ttl := time.Until(id.Claims.ExpiresAt.Time)
		if err := s.blacklist.Revoke(c.UserContext(), id.Claims.ID, ttl); err != nil {
			observability.AuthEvents.WithLabelValues("logout", "failure").Inc()
			return respondError(c, "", err)
		}
	}

	observability.AuthEvents.WithLabelValues("logout", "success").Inc()
	return models.RespondOK(c, fiber.StatusOK, "Logout successful", nil)
}

// GetMe returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=models.User}
// @Failure 401 {object} models.Response
// @Router /auth/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	return models.RespondOK(c, fiber.StatusOK, "User information retrieved", user)
}

// GetUserProfile returns a user's public profile
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Response{data=models.User}
// @Failure 404 {object} models.Response
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return nil
	}

	user, err := s.users.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "User not found", err)
	}
	return models.RespondOK(c, fiber.StatusOK, "User profile retrieved", user)
}
