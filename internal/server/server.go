// Package server contains the HTTP handlers for the application's API and pages.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Store
	images         *storage.ImageStore
	visits         *cache.VisitCounter
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	tagRepo        repository.UserTagRepository
	likeRepo       repository.LikeRepository
	postService    *service.PostService
	commentService *service.CommentService
	tagService     *service.TagService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("inkwell-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		sessions: session.New(session.Config{
			Expiration:     7 * 24 * time.Hour,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
		images:      storage.NewImageStore(cfg),
		visits:      cache.NewVisitCounter(redisClient),
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		tagRepo:     repository.NewUserTagRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
	}

	server.postService = service.NewPostService(server.postRepo, server.likeRepo, server.images, server.visits)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, server.likeRepo)
	server.tagService = service.NewTagService(server.tagRepo, server.userRepo, server.postRepo)
	server.userService = service.NewUserService(server.userRepo, server.images)

	if err := loadTemplates(); err != nil {
		return nil, fmt.Errorf("template loading failed: %w", err)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing, when enabled
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		// The server-rendered pages are same-origin forms; the default CSP
		// blocks them in some browsers when served over plain HTTP in dev.
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before anything that can short-circuit, so browser clients still
	// receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded images
	app.Static("/media", s.images.Root())

	// Server-rendered pages
	app.Get("/", s.IndexPage)
	app.Get("/signup", s.SignupPage)
	app.Post("/signup", s.SignupSubmit)
	app.Get("/login", s.LoginPage)
	app.Post("/login", s.LoginSubmit)
	app.Get("/logout", s.LogoutPage)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Every content route, reads included, requires an authenticated caller.
	protected := api.Group("", s.AuthRequired())

	posts := protected.Group("/post")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Specific /tagged-* routes BEFORE the generic /:id route
	posts.Get("/tagged-users/:id", s.GetTaggedUsers)
	posts.Get("/tagged-posts/:id", s.GetTaggedPosts)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Post("/:id/like", s.TogglePostLike)
	posts.Get("/:id", s.GetPost)
	posts.Patch("/:id", s.UpdatePost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comment")
	comments.Get("/", s.GetComments)
	comments.Post("/", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	comments.Post("/:id/like", s.ToggleCommentLike)
	comments.Get("/:id", s.GetComment)
	comments.Patch("/:id", s.UpdateComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Tags are append-only through the API.
	protected.Post("/usertag", s.CreateUserTag)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// The visit counter store is optional: the app serves reads and writes
	// without it, so it degrades readiness but never fails it alone.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
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

// AuthRequired returns the authentication middleware. It accepts either a
// bearer token issued by the API or the browser session set by the login
// page, so both clients share the protected routes.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := s.sessionUserID(c); ok {
			return s.authenticated(c, userID)
		}

		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
			isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && isBlacklisted > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		return s.authenticated(c, uint(userID))
	}
}

// authenticated stores the user ID in locals and the user context, then
// continues the chain.
func (s *Server) authenticated(c *fiber.Ctx, userID uint) error {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
	return c.Next()
}

// sessionUserID reads the browser session, if any.
func (s *Server) sessionUserID(c *fiber.Ctx) (uint, bool) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return 0, false
	}
	raw := sess.Get("userID")
	if raw == nil {
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Inkwell API",
		BodyLimit: (s.config.ImageMaxUploadSizeMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
