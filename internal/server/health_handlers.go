package server

import (
	"context"
	"time"

	"blogapi/internal/database"
	"blogapi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Home returns API information and the caller's feature flags
// @Summary API information
// @Tags meta
// @Produce json
// @Success 200 {object} models.Response
// @Router / [get]
func (s *Server) Home(c *fiber.Ctx) error {
	return models.RespondOK(c, fiber.StatusOK, "Blog Platform API", fiber.Map{
		"version":     apiVersion,
		"description": "A scalable blog platform with authentication, voting, and search",
		"endpoints": fiber.Map{
			"auth":   "/api/auth/*",
			"posts":  "/api/posts/*",
			"users":  "/api/users/*",
			"search": "/api/search",
		},
		"features": s.featureFlags.Snapshot(requestUserID(c)),
	})
}

// Ping is a lightweight health check
// @Summary Ping
// @Tags meta
// @Produce json
// @Success 200 {object} models.Response
// @Router /ping [get]
func (s *Server) Ping(c *fiber.Ctx) error {
	return models.RespondOK(c, fiber.StatusOK, "pong", fiber.Map{"status": "healthy"})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// server started without it reports "disabled" and stays ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": apiVersion,
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
