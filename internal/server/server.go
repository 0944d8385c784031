// Package server contains the Fiber application and the HTTP handlers for the API.
package server

import (
	"context"
	"log"
	"net"
	"time"

	_ "puppytalk/docs" // swagger docs
	"puppytalk/internal/config"
	"puppytalk/internal/middleware"
	"puppytalk/internal/repository"
	"puppytalk/internal/security"
	"puppytalk/internal/service"
	"puppytalk/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.Storage
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	sessionService *service.SessionService
	authService    *service.AuthService
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	likeService    *service.LikeService
	mediaService   *service.MediaService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case rate limits fall back to in-process
// limiters and the post cache is bypassed.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Storage) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)
	postRepo := repository.NewPostRepository(db)
	hasher := security.NewHasher(cfg.BcryptCost)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("puppytalk-api"),
	}
	s.sessionService = service.NewSessionService(repository.NewSessionRepository(db), cfg.SessionTTL())
	s.authService = service.NewAuthService(userRepo, imageRepo, s.sessionService, hasher)
	s.userService = service.NewUserService(userRepo, imageRepo, hasher)
	s.postService = service.NewPostService(postRepo, imageRepo)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo)
	s.likeService = service.NewLikeService(repository.NewLikeRepository(db))
	s.mediaService = service.NewMediaService(imageRepo, store, cfg)
	return s, nil
}

// Sessions exposes the session service so the process can run the sweeper.
func (s *Server) Sessions() *service.SessionService {
	return s.sessionService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Security headers
	app.Use(helmet.New(helmet.Config{
		XFrameOptions:             "DENY",
		ContentTypeNosniff:        "nosniff",
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.CORSOrigins
	if origins == "" {
		origins = "http://127.0.0.1:5500,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting per IP (preflight requests are never limited)
	window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
	app.Use(middleware.RateLimit(s.redis, s.config.RateLimitMaxRequests, window, "global"))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	app.Get("/api/swagger/*", swagger.HandlerDefault)

	// Uploaded files served from disk when the local backend is active
	if local, ok := s.store.(*storage.LocalStorage); ok {
		app.Static("/upload", local.Dir)
	}

	api := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(s.sessionService)

	loginWindow := time.Duration(s.config.LoginRateLimitWindow) * time.Second

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, s.config.SignupRateLimitMaxAttempts, loginWindow, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, s.config.LoginRateLimitMaxAttempts, loginWindow, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", authRequired, s.Me)

	// User routes
	users := api.Group("/users")
	users.Get("/availability", s.CheckAvailability)
	users.Get("/me", authRequired, s.GetMyProfile)
	users.Patch("/me/password", authRequired, s.UpdateMyPassword)
	users.Patch("/me", authRequired, s.UpdateMyProfile)
	users.Delete("/me", authRequired, s.Withdraw)

	// Post routes. Define specific /:id/:resource routes BEFORE generic /:id route
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", authRequired, s.CreatePost)
	posts.Post("/:id/view", s.RecordPostView)
	posts.Post("/:id/likes", authRequired, s.LikePost)
	posts.Delete("/:id/likes", authRequired, s.UnlikePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", authRequired, s.CreateComment)
	posts.Patch("/:id/comments/:commentId", authRequired, s.RequireCommentAuthor(), s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", authRequired, s.RequireCommentAuthor(), s.DeleteComment)
	posts.Get("/:id", middleware.OptionalAuth(s.sessionService), s.GetPost)
	posts.Patch("/:id", authRequired, s.RequirePostAuthor(), s.UpdatePost)
	posts.Delete("/:id", authRequired, s.RequirePostAuthor(), s.DeletePost)

	// Media routes. Uploads are allowed before signup for profile pictures.
	media := api.Group("/media")
	media.Post("/images", middleware.OptionalAuth(s.sessionService), s.UploadImage)
	media.Delete("/images/:id", authRequired, s.DeleteImage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it rate limits run in-process.
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
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "PuppyTalk API",
		ErrorHandler: ErrorHandler,
		// Multipart framing on top of the largest accepted image.
		BodyLimit: int(s.config.MaxFileSize) + 1024*1024,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	addr := net.JoinHostPort(s.config.Host, s.config.Port)
	log.Printf("Server starting on %s...", addr)
	return app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Shutdown the HTTP server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
