// Package server contains the HTTP handlers for the blog API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "blogapi/docs" // swagger docs
	"blogapi/internal/bootstrap"
	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/featureflags"
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/repository"
	"blogapi/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const apiVersion = "1.0.0"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	store    repository.Store
	users    *service.UserService
	posts    *service.PostService
	votes    *service.VoteService
	comments *service.CommentService

	tokens    *middleware.TokenManager
	auth      *middleware.Authenticator
	blacklist *cache.TokenBlacklist
	limiter   *middleware.RateLimiter
}

// NewServer connects to the database and Redis, applies the schema policy
// and wires the services.
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional; a nil client disables rate limiting and revocation.
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	store := repository.NewStore(db, database.TxOptions(db))
	users := service.NewUserService(store)
	blacklist := cache.NewTokenBlacklist(redisClient)
	tokens := middleware.NewTokenManager(cfg)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("blogapi"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		store:          store,
		users:          users,
		posts:          service.NewPostService(store),
		votes:          service.NewVoteService(store),
		comments:       service.NewCommentService(store),
		tokens:         tokens,
		auth:           middleware.NewAuthenticator(tokens, users, blacklist),
		blacklist:      blacklist,
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
	}, nil
}

// FeatureFlags exposes the runtime flag manager.
func (s *Server) FeatureFlags() *featureflags.Manager {
	return s.featureFlags
}

// App builds the Fiber app on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "Blog Platform API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Response{
				Message: "Too many requests, please try again later.",
				Errors:  map[string]string{"rate_limit": "rate limit exceeded"},
			})
		},
	}))
}

// SetupRoutes configures all routes
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.auth.Optional(), s.Home)
	app.Get("/ping", s.Ping)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.limiter.Limit("register", 10, time.Hour), s.writeGuard(), s.Register)
	auth.Post("/login", s.limiter.Limit("login", 20, 15*time.Minute), s.Login)
	auth.Post("/logout", s.auth.Required(), s.Logout)
	auth.Get("/me", s.auth.Required(), s.GetMe)

	api.Get("/users/:id", s.GetUserProfile)
	api.Get("/search", s.auth.Optional(), s.featureGate(featureflags.Search), s.SearchPosts)

	posts := api.Group("/posts")
	posts.Get("/", s.auth.Optional(), s.ListPosts)
	posts.Post("/", s.auth.Required(), s.writeGuard(), s.limiter.Limit("post_create", 30, time.Hour), s.CreatePost)
	posts.Get("/:id", s.auth.Optional(), s.GetPost)
	posts.Put("/:id", s.auth.Required(), s.writeGuard(), s.UpdatePost)
	posts.Delete("/:id", s.auth.Required(), s.writeGuard(), s.DeletePost)

	posts.Post("/:id/vote", s.auth.Required(), s.writeGuard(), s.VoteOnPost)
	posts.Get("/:id/vote-status", s.auth.Required(), s.GetVoteStatus)

	posts.Get("/:id/comments", s.auth.Optional(), s.ListComments)
	posts.Post("/:id/comments", s.auth.Required(), s.writeGuard(), s.limiter.Limit("comment_create", 60, time.Hour), s.CreateComment)
}

// errorHandler renders errors that escaped a handler, unmatched routes and
// recovered panics as envelopes.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			return c.Status(fiber.StatusNotFound).JSON(models.Response{
				Message: "Resource not found",
				Errors:  map[string]string{"route": "Endpoint not found"},
			})
		case fiberErr.Code == fiber.StatusMethodNotAllowed:
			return c.Status(fiber.StatusMethodNotAllowed).JSON(models.Response{
				Message: "Method not allowed",
				Errors:  map[string]string{"method": "HTTP method not supported for this endpoint"},
			})
		case fiberErr.Code < fiber.StatusInternalServerError:
			return c.Status(fiberErr.Code).JSON(models.Response{
				Message: fiberErr.Message,
				Errors:  map[string]string{"request": fiberErr.Message},
			})
		}
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return models.RespondWithError(c, appErr.Status(), "", appErr)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(models.Response{
		Message: "Internal server error",
		Errors:  map[string]string{"server": "An unexpected error occurred"},
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
